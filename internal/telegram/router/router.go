// Package router binds registry entries to Telebot endpoints with shared
// middleware and a uniform per-handler summary log.
package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/bdnetwork/ordersbot/internal/logger"
	tg "github.com/bdnetwork/ordersbot/internal/telegram"
	"github.com/bdnetwork/ordersbot/internal/telegram/middleware"
)

// Flow is the minimal surface the router needs from the conversation engine.
type Flow interface {
	InProgress(userID int64) bool
	TextHandler(c tele.Context) error
	DocumentHandler(c tele.Context) error
}

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		h = wrapCommand(cmd, h)
		h = middleware.RecoverMiddleware(h)
		h = middleware.LoggerMiddleware(h)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.Wire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("menus", len(reg.ListMenus())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func wrapCommand(cmd string, h tele.HandlerFunc) tele.HandlerFunc {
	name := "command." + normalizeHandlerName(cmd)
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, name, start, "", "", func() error {
			return h(c)
		})
	}
}

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// Handlers and the not-found fallback answer the callback query themselves so
// the client spinner always stops.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := middleware.ParseCallback(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			extras = append(extras, slog.String("reason", "not_found"))
			return handleWithSummary(c, name, start, "skip", "unrecognized", func() error {
				if fallback != nil {
					return fallback(c)
				}
				return nil
			}, extras...)
		}

		return handleWithSummary(c, name, start, "", "", func() error {
			return cbHandler(c)
		}, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing.
//
// Menu labels win over an active conversation: tapping a reply-keyboard
// button always opens its screen even mid-flow, and the menu handlers take
// care of discarding the stale flow. Only then does flow-gated text input get
// a chance; anything else is ignored with a logged skip.
func TextRoutes(flow Flow, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if menuHandler, ok := reg.LookupMenu(text); ok {
				name := "menu." + normalizeHandlerName(text)
				return handleWithSummary(c, name, start, "", "", func() error {
					return menuHandler(c)
				})
			}
		}

		if flow != nil && flow.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "flow.text", start, "", "", func() error {
				return flow.TextHandler(c)
			})
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "skip", "unrecognized", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "unrecognized", nil)
		return nil
	}

	docHandler := func(c tele.Context) error {
		start := time.Now()
		if flow != nil && flow.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "flow.document", start, "", "", func() error {
				return flow.DocumentHandler(c)
			})
		}
		if opts.UnknownDocument != nil {
			return handleWithSummary(c, "unexpected_document", start, "skip", "unrecognized", func() error {
				return opts.UnknownDocument(c)
			})
		}
		logHandlerSummary(c, "unexpected_document", start, "skip", "unrecognized", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(docHandler)),
		},
	}
}
