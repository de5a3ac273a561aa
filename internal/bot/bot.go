// Package bot implements the customer-facing handlers of the order bot:
// the reply-keyboard menu, the guided purchase and withdrawal flows, and the
// admin notifications they produce.
package bot

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/catalog"
	"github.com/bdnetwork/ordersbot/internal/flow"
	"github.com/bdnetwork/ordersbot/internal/storage"
)

// AdminNotifier delivers order events to the admin chat.
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, text string)
	RelayFile(ctx context.Context, msg tele.Editable)
}

// ErrorCounter reports how many outbound deliveries have failed so far.
type ErrorCounter interface {
	ErrorCount() uint64
}

// Options wires the collaborators of the bot handlers.
type Options struct {
	Catalog  *catalog.Catalog
	Ledger   storage.Ledger
	Flows    *flow.Store
	Notifier AdminNotifier
	Errors   ErrorCounter

	AdminUsername string
	ChannelURL    string
	MinWithdrawal int64
}

// Bot carries handler dependencies; one instance serves all updates.
type Bot struct {
	catalog  *catalog.Catalog
	ledger   storage.Ledger
	flows    *flow.Store
	notifier AdminNotifier
	errors   ErrorCounter

	adminUsername string
	channelURL    string
	minWithdrawal int64
}

// New builds the handler set from its collaborators.
func New(opts Options) *Bot {
	min := opts.MinWithdrawal
	if min <= 0 {
		min = flow.DefaultMinWithdrawal
	}
	return &Bot{
		catalog:       opts.Catalog,
		ledger:        opts.Ledger,
		flows:         opts.Flows,
		notifier:      opts.Notifier,
		errors:        opts.Errors,
		adminUsername: opts.AdminUsername,
		channelURL:    opts.ChannelURL,
		minWithdrawal: min,
	}
}

// fullName renders the sender's display name the way Telegram clients do.
func fullName(u *tele.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
