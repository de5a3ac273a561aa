// Package notify delivers order and withdrawal events to the admin account.
package notify

import (
	"context"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/logger"
	tgsender "github.com/bdnetwork/ordersbot/internal/telegram/sender"
)

// API is the subset of tele.Bot used by the notifier.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Forward(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
}

// Notifier forwards business events to the configured admin chat.
// Delivery is asynchronous through the sender dispatcher; failures are logged
// and never propagate back to the customer-facing handler.
type Notifier struct {
	api        atomic.Pointer[apiHolder]
	admin      tele.Recipient
	dispatcher *tgsender.Dispatcher
}

type apiHolder struct{ api API }

// New builds a Notifier for the given admin chat id. The transport is
// attached later with Bind, once the bot client exists.
func New(adminID int64, dispatcher *tgsender.Dispatcher) *Notifier {
	return &Notifier{
		admin:      &tele.User{ID: adminID},
		dispatcher: dispatcher,
	}
}

// Bind attaches the Telegram client used for delivery.
func (n *Notifier) Bind(api API) {
	if api == nil {
		return
	}
	n.api.Store(&apiHolder{api: api})
}

func (n *Notifier) current() API {
	if h := n.api.Load(); h != nil {
		return h.api
	}
	return nil
}

// NotifyAdmin sends a text summary to the admin chat.
func (n *Notifier) NotifyAdmin(ctx context.Context, text string) {
	api := n.current()
	if api == nil {
		return
	}
	n.submit(ctx, "notify.admin", func() error {
		_, err := api.Send(n.admin, text)
		return err
	})
}

// RelayFile forwards the customer's uploaded message to the admin chat,
// preserving the original document and caption.
func (n *Notifier) RelayFile(ctx context.Context, msg tele.Editable) {
	api := n.current()
	if api == nil || msg == nil {
		return
	}
	n.submit(ctx, "notify.relay_file", func() error {
		_, err := api.Forward(n.admin, msg)
		return err
	})
}

func (n *Notifier) submit(ctx context.Context, action string, run func() error) {
	if n == nil {
		return
	}
	if n.dispatcher != nil {
		err := n.dispatcher.Enqueue(ctx, action, "sendMessage", run)
		if err == nil {
			return
		}
		logger.Warn(ctx, "tg.notify", "enqueue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
	}
	// Synchronous fallback keeps admin alerts flowing when the queue is
	// saturated or already closed during shutdown.
	if err := run(); err != nil {
		logger.Error(ctx, "tg.notify", "deliver.fail",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
	}
}
