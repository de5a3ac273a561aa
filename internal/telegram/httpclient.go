package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/bdnetwork/ordersbot/internal/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsHandshake      = 5 * time.Second
	idleConnTimeout   = 90 * time.Second
	keepAliveInterval = 30 * time.Second

	// Headroom added on top of the long-poll timeout: getUpdates holds the
	// connection open for the whole poll window before the first byte of the
	// response arrives.
	headerTimeoutSlack = 5 * time.Second
	clientTimeoutSlack = 20 * time.Second

	retryAttempts = 3
	retryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns the HTTP client used for Bot API calls.
//
// All traffic goes to the single api.telegram.org host, so the connection
// pool stays small, and both timeouts are derived from the long-poll window
// instead of fixed values; a fixed response-header timeout shorter than the
// poll window would abort every idle getUpdates call.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshake,
		ResponseHeaderTimeout: pollTimeout + headerTimeoutSlack,
	}

	return &http.Client{
		Timeout: pollTimeout + clientTimeoutSlack,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: retryAttempts,
			backoff:    retryBackoff,
		},
	}
}

// retryTransport retries transient dial/timeout failures with linear backoff.
// Requests with a non-rewindable body are never replayed.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	attempts := t.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		currReq, ok := rewind(req, attempt)
		if !ok {
			return nil, lastErr
		}

		resp, err := base.RoundTrip(currReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

// rewind returns the request to send for the given attempt. Replays need a
// fresh body; requests that cannot produce one are not retried.
func rewind(req *http.Request, attempt int) (*http.Request, bool) {
	if attempt == 1 {
		return req, true
	}
	if req.Body != nil && req.GetBody == nil {
		return nil, false
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, false
		}
		clone.Body = body
	}
	return clone, true
}
