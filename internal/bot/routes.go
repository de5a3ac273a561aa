package bot

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/bdnetwork/ordersbot/internal/telegram"
)

// Register wires the bot's commands, menu labels, and callbacks into the registry.
func (b *Bot) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", tg.Command{
		Handler:     b.Start,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/stats", tg.Command{
		Handler:     b.Stats,
		Description: "Show ledger and delivery stats",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.RegisterMenu(MenuAccountSell, b.AccountSell)
	reg.RegisterMenu(MenuBalance, b.Balance)
	reg.RegisterMenu(MenuWithdrawal, b.Withdrawal)
	reg.RegisterMenu(MenuHistory, b.History)
	reg.RegisterMenu(MenuSupport, b.Support)

	_ = reg.RegisterCallback(cbBuy, b.Buy)
	_ = reg.RegisterCallback(cbQtyMinus, b.QuantityMinus)
	_ = reg.RegisterCallback(cbQtyPlus, b.QuantityPlus)
	_ = reg.RegisterCallback(cbQtyConfirm, b.QuantityConfirm)

	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: unsupportedActionText})
	})
}

// InProgress reports whether the user has an active conversation.
func (b *Bot) InProgress(userID int64) bool {
	return b.flows.InProgress(userID)
}

// TextHandler satisfies the router's flow interface for typed input.
func (b *Bot) TextHandler(c tele.Context) error {
	return b.FlowText(c)
}

// DocumentHandler satisfies the router's flow interface for uploads.
func (b *Bot) DocumentHandler(c tele.Context) error {
	return b.Document(c)
}
