package bot

import (
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/logger"
	tghelpers "github.com/bdnetwork/ordersbot/internal/telegram/helpers"
)

// Stats is the admin-only snapshot of ledger and delivery health.
func (b *Bot) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	count, err := b.ledger.OrderCount(ctx)
	if err != nil {
		logger.Error(ctx, "bot", "stats.count_failed", slog.String("err", err.Error()))
		return err
	}

	var sendErrors uint64
	if b.errors != nil {
		sendErrors = b.errors.ErrorCount()
	}

	return c.Send(fmt.Sprintf(
		"📊 Bot Stats\n\n🧾 Orders recorded: %d\n⚠️ Delivery errors: %d",
		count, sendErrors,
	))
}
