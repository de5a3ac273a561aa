package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bdnetwork/ordersbot/internal/bot"
	"github.com/bdnetwork/ordersbot/internal/catalog"
	"github.com/bdnetwork/ordersbot/internal/config"
	"github.com/bdnetwork/ordersbot/internal/flow"
	"github.com/bdnetwork/ordersbot/internal/logger"
	"github.com/bdnetwork/ordersbot/internal/storage"
	tg "github.com/bdnetwork/ordersbot/internal/telegram"
	"github.com/bdnetwork/ordersbot/internal/telegram/middleware"
	"github.com/bdnetwork/ordersbot/internal/telegram/notify"
	"github.com/bdnetwork/ordersbot/internal/telegram/router"
	tgsender "github.com/bdnetwork/ordersbot/internal/telegram/sender"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("ordersbot: %v", err)
	}
}

func run() error {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.Settings{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		BotFile: cfg.Logging.BotFile,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown: %v", err)
		}
	}()

	ledger, err := buildLedger(cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	products := make([]catalog.Product, 0, len(cfg.Catalog))
	for _, p := range cfg.Catalog {
		products = append(products, catalog.Product{Slug: p.Slug, Label: p.Label, Price: p.Price})
	}

	flows := flow.NewStore(flow.NewMachine(cfg.Withdrawal.Minimum))
	dispatcher := tgsender.NewDispatcher(tgsender.Options{})
	notifier := notify.New(cfg.Telegram.AdminID, dispatcher)

	handlers := bot.New(bot.Options{
		Catalog:       catalog.New(products),
		Ledger:        ledger,
		Flows:         flows,
		Notifier:      notifier,
		Errors:        dispatcher,
		AdminUsername: cfg.Telegram.AdminUsername,
		ChannelURL:    cfg.Telegram.ChannelURL,
		MinWithdrawal: cfg.Withdrawal.Minimum,
	})

	reg := tg.NewRegistry()
	handlers.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(handlers, reg, router.TextOptions{})...)

	var middlewares []tg.Middleware
	if cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		middlewares = append(middlewares, tg.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Dispatcher:  dispatcher,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			notifier.Bind(rt.Bot)
			logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot started",
				slog.String("event", "start"),
				slog.String("storage", cfg.Storage.Driver),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot stopped",
				slog.String("event", "stop"),
				slog.Uint64("send_errors", rt.Dispatcher.ErrorCount()),
			)
			return nil
		},
	})
}

func buildLedger(cfg *config.Config) (storage.Ledger, error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return storage.NewMemoryLedger(), nil
	}

	if err := storage.RunMigrations(cfg.Storage.Postgres); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	db, err := storage.Connect(cfg.Storage.Postgres)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return storage.NewPostgresLedger(db), nil
}
