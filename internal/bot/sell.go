package bot

import (
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/flow"
	"github.com/bdnetwork/ordersbot/internal/logger"
	tghelpers "github.com/bdnetwork/ordersbot/internal/telegram/helpers"
	"github.com/bdnetwork/ordersbot/internal/telegram/keyboard"
	"github.com/bdnetwork/ordersbot/internal/telegram/middleware"
)

// Callback unique keys for the purchase flow.
const (
	cbBuy        = "buy"
	cbQtyMinus   = "qty_minus"
	cbQtyPlus    = "qty_plus"
	cbQtyConfirm = "qty_confirm"
)

// AccountSell shows the product list. Opening the menu discards any flow in
// progress so a stale quantity screen cannot swallow later input.
func (b *Bot) AccountSell(c tele.Context) error {
	b.flows.Reset(c.Sender().ID)

	products := b.catalog.Products()
	buttons := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   p.ButtonLabel(),
			Unique: cbBuy,
			Data:   p.Slug,
		})
	}
	return c.Send(selectAccountText, keyboard.InlineButtons(buttons))
}

// Buy handles product selection and opens the quantity screen in place.
func (b *Bot) Buy(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	slug := callbackPayload(c)

	product, err := b.catalog.Lookup(slug)
	if err != nil {
		logger.Warn(ctx, "bot", "buy.unknown_product",
			slog.String("payload", logger.SanitizeLimit(slug, 64)),
		)
		return c.Respond(&tele.CallbackResponse{Text: unsupportedActionText})
	}

	res := b.flows.Apply(c.Sender().ID, flow.SelectProduct{
		Service: product.Label,
		Price:   product.Price,
	})
	if err := c.Respond(); err != nil {
		logger.Debug(ctx, "bot", "buy.respond_failed", slog.String("err", err.Error()))
	}
	return b.renderQuantity(c, res.Session)
}

// QuantityMinus decrements the pending quantity, never below one.
func (b *Bot) QuantityMinus(c tele.Context) error {
	return b.adjustQuantity(c, -1)
}

// QuantityPlus increments the pending quantity.
func (b *Bot) QuantityPlus(c tele.Context) error {
	return b.adjustQuantity(c, +1)
}

func (b *Bot) adjustQuantity(c tele.Context, delta int64) error {
	res := b.flows.Apply(c.Sender().ID, flow.AdjustQuantity{Delta: delta})
	if res.Action != flow.ActionRenderQuantity {
		return b.skipCallback(c, "quantity.no_flow")
	}
	if err := c.Respond(); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "bot", "quantity.respond_failed", slog.String("err", err.Error()))
	}
	return b.renderQuantity(c, res.Session)
}

// QuantityConfirm freezes the quantity and asks for the file upload.
func (b *Bot) QuantityConfirm(c tele.Context) error {
	res := b.flows.Apply(c.Sender().ID, flow.ConfirmQuantity{})
	if res.Action != flow.ActionPromptFile {
		return b.skipCallback(c, "confirm.no_flow")
	}
	if err := c.Respond(); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "bot", "confirm.respond_failed", slog.String("err", err.Error()))
	}
	return editOrSend(c, uploadPrompt(res.Session.Quantity, res.Session.Total))
}

// Document completes a purchase when an upload is expected.
func (b *Bot) Document(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	res := b.flows.Apply(userID, flow.UploadFile{})
	if res.Action != flow.ActionCompletePurchase || res.Order == nil {
		logger.Debug(ctx, "bot", "document.ignored",
			slog.String("outcome", "no_active_flow"),
		)
		return nil
	}

	order, err := b.ledger.Record(ctx, userID, res.Order.Service, res.Order.Amount)
	if err != nil {
		logger.Error(ctx, "bot", "order.record_failed", slog.String("err", err.Error()))
		return err
	}

	logger.Info(ctx, "bot", "order.created",
		slog.String("order_id", order.ID),
		slog.String("service", order.Service),
		slog.Int64("amount", order.Amount),
	)

	b.notifier.NotifyAdmin(ctx, newOrderAdminText(fullName(c.Sender()), order.ID, order.Service, order.Amount))
	b.notifier.RelayFile(ctx, c.Message())

	return c.Send(purchaseAcceptedText)
}

func (b *Bot) renderQuantity(c tele.Context, s flow.Session) error {
	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➖", Unique: cbQtyMinus},
			{Text: "➕", Unique: cbQtyPlus},
		},
		[]keyboard.InlineBtn{
			{Text: "✅ Confirm", Unique: cbQtyConfirm},
		},
	)
	return editOrSend(c, quantityPrompt(s.Service, s.UnitPrice, s.Quantity), markup)
}

// skipCallback answers a callback that arrived outside its flow step, e.g.
// a tap on a quantity button left over from an abandoned purchase.
func (b *Bot) skipCallback(c tele.Context, event string) error {
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "bot", event, slog.String("outcome", "skip"))
	return c.Respond(&tele.CallbackResponse{Text: unsupportedActionText})
}

// callbackPayload returns the data part of the pressed inline button.
// Updates arrive through the generic OnCallback endpoint, so Data still
// carries the full \f<unique>|<payload> framing and Unique may be empty;
// ParseCallback strips both.
func callbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	_, payload := middleware.ParseCallback(cb)
	return payload
}

// editOrSend edits the callback message in place, tolerating the identical
// content rejection Telegram returns when nothing visibly changed.
func editOrSend(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	var err error
	if len(markup) > 0 {
		err = c.EditOrSend(text, markup[0])
	} else {
		err = c.EditOrSend(text)
	}
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}
