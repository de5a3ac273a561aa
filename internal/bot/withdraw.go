package bot

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/flow"
	"github.com/bdnetwork/ordersbot/internal/logger"
	tghelpers "github.com/bdnetwork/ordersbot/internal/telegram/helpers"
)

// Withdrawal opens the withdrawal flow and asks for the payment method.
func (b *Bot) Withdrawal(c tele.Context) error {
	res := b.flows.Apply(c.Sender().ID, flow.BeginWithdrawal{})
	if res.Action != flow.ActionPromptMethod {
		return nil
	}
	return c.Send(fmt.Sprintf(withdrawMethodPrompt, b.minWithdrawal))
}

// FlowText feeds typed text into the active flow step. The router only calls
// it while a flow is in progress.
func (b *Bot) FlowText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	// Before withdrawal data, capture for the admin summary; Apply clears
	// the session on completion.
	pending := b.flows.Get(userID)
	res := b.flows.Apply(userID, flow.EnterText{Text: c.Text()})

	switch res.Action {
	case flow.ActionPromptNumber:
		return c.Send(withdrawNumberPrompt)

	case flow.ActionPromptAmount:
		return c.Send(fmt.Sprintf(withdrawAmountPrompt, b.minWithdrawal))

	case flow.ActionRejectAmountFormat:
		return c.Send(amountFormatError)

	case flow.ActionRejectAmountMinimum:
		return c.Send(fmt.Sprintf(amountMinimumError, b.minWithdrawal))

	case flow.ActionCompleteWithdrawal:
		if res.Order == nil {
			return nil
		}
		order, err := b.ledger.Record(ctx, userID, res.Order.Service, res.Order.Amount)
		if err != nil {
			logger.Error(ctx, "bot", "withdrawal.record_failed", slog.String("err", err.Error()))
			return err
		}

		logger.Info(ctx, "bot", "withdrawal.created",
			slog.String("order_id", order.ID),
			slog.String("service", order.Service),
			slog.Int64("amount", order.Amount),
		)

		b.notifier.NotifyAdmin(ctx, withdrawalAdminText(
			fullName(c.Sender()), pending.Method, pending.Number, order.Amount, order.ID,
		))
		return c.Send(fmt.Sprintf(withdrawSubmittedText, order.ID))
	}

	// Text during the quantity or upload step carries no meaning; the
	// inline buttons and the document handler drive those steps.
	logger.Debug(ctx, "bot", "flow.text_ignored",
		slog.String("step", string(res.Session.Step)),
	)
	return nil
}
