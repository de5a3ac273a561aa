package telegram

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type scriptedTransport struct {
	failures int
	calls    int
	bodies   []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		s.bodies = append(s.bodies, string(data))
	}
	if s.calls <= s.failures {
		return nil, timeoutErr{}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestBuildHTTPClientDerivesTimeoutsFromPollWindow(t *testing.T) {
	client := BuildHTTPClient(25 * time.Second)
	assert.Equal(t, 45*time.Second, client.Timeout)

	rt, ok := client.Transport.(*retryTransport)
	require.True(t, ok)
	base, ok := rt.base.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, base.ResponseHeaderTimeout)

	// Zero poll window (webhook mode) falls back to the long-poll default.
	client = BuildHTTPClient(0)
	assert.Equal(t, 30*time.Second, client.Timeout)
}

func TestRetryTransportRetriesTimeouts(t *testing.T) {
	scripted := &scriptedTransport{failures: 2}
	rt := &retryTransport{base: scripted, maxRetries: 3}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendMessage", strings.NewReader("chat_id=1"))
	require.NoError(t, err)

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 3, scripted.calls)
	// Each replay carried a freshly rewound body.
	assert.Equal(t, []string{"chat_id=1", "chat_id=1", "chat_id=1"}, scripted.bodies)
}

func TestRetryTransportGivesUpAfterBudget(t *testing.T) {
	scripted := &scriptedTransport{failures: 10}
	rt := &retryTransport{base: scripted, maxRetries: 2}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/botX/getUpdates", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 3, scripted.calls)
}

func TestRetryTransportNeverReplaysUnrewindableBody(t *testing.T) {
	scripted := &scriptedTransport{failures: 10}
	rt := &retryTransport{base: scripted, maxRetries: 3}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/botX/sendDocument", nil)
	require.NoError(t, err)
	req.Body = io.NopCloser(strings.NewReader("file-bytes"))
	req.GetBody = nil

	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, scripted.calls)
}
