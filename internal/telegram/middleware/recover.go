package middleware

import (
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/logger"
)

// RecoverMiddleware catches panics in handlers so one bad update cannot take
// the bot down; the faulty update is dropped and the next one proceeds.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				attrs := []slog.Attr{
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.Int("update_id", c.Update().ID),
					slog.String("stack", string(debug.Stack())),
				}
				if user := c.Sender(); user != nil {
					attrs = append(attrs, slog.Int64("user_id", user.ID))
				}
				logger.TG.LogAttrs(logger.Background(), slog.LevelError, "panic recovered", attrs...)
			}
		}()
		return next(c)
	}
}
