package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/logger"
	tghelpers "github.com/bdnetwork/ordersbot/internal/telegram/helpers"
	"github.com/bdnetwork/ordersbot/internal/telegram/keyboard"
)

// Start greets the user, seeds the balance record, and shows the main menu.
func (b *Bot) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	b.flows.Reset(userID)
	if err := b.ledger.EnsureUser(ctx, userID); err != nil {
		logger.Error(ctx, "bot", "start.ensure_user_failed", slog.String("err", err.Error()))
		return err
	}

	menu := keyboard.ReplyButtons(
		[]string{MenuAccountSell, MenuBalance},
		[]string{MenuWithdrawal, MenuHistory},
		[]string{MenuSupport},
	)
	return c.Send(welcomeText, menu)
}

// Balance reports the user's current balance.
func (b *Bot) Balance(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	b.flows.Reset(userID)
	balance, err := b.ledger.Balance(ctx, userID)
	if err != nil {
		logger.Error(ctx, "bot", "balance.lookup_failed", slog.String("err", err.Error()))
		return err
	}
	return c.Send(balanceText(fullName(c.Sender()), balance))
}

// History lists the user's orders, oldest first.
func (b *Bot) History(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	b.flows.Reset(userID)
	orders, err := b.ledger.List(ctx, userID)
	if err != nil {
		logger.Error(ctx, "bot", "history.lookup_failed", slog.String("err", err.Error()))
		return err
	}
	if len(orders) == 0 {
		return c.Send(noHistoryText)
	}
	return c.Send(historyText(orders))
}

// Support shows the admin contact and channel details.
func (b *Bot) Support(c tele.Context) error {
	b.flows.Reset(c.Sender().ID)
	return c.Send(supportText(b.adminUsername, b.channelURL))
}
