package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bdnetwork/ordersbot/internal/logger"
)

const pgUniqueViolation = "23505"

// postgresLedger persists balances and orders in PostgreSQL via sqlx.
type postgresLedger struct {
	db *sqlx.DB
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	took := time.Since(start)
	if err != nil {
		logger.Store.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", "postgres"),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxConnections)
	}

	logger.Store.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Duration("duration", logger.RoundMS(took)),
	)

	return db, nil
}

// NewPostgresLedger wraps an open sqlx connection as a Ledger.
func NewPostgresLedger(db *sqlx.DB) Ledger {
	return &postgresLedger{db: db}
}

// EnsureUser inserts a zero balance row unless the user already exists.
func (p *postgresLedger) EnsureUser(ctx context.Context, userID int64) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO balances (user_id, balance) VALUES ($1, 0)
		 ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

// Record inserts a new Pending order, retrying id generation on collisions.
func (p *postgresLedger) Record(ctx context.Context, userID int64, service string, amount int64) (Order, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		order := Order{
			ID:        NewOrderID(),
			UserID:    userID,
			Service:   service,
			Amount:    amount,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		}
		_, err := p.db.NamedExecContext(ctx,
			`INSERT INTO orders (id, user_id, service, amount, status, created_at)
			 VALUES (:id, :user_id, :service, :amount, :status, :created_at)`, order)
		if err == nil {
			return order, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			logger.Store.Warn("order id collision",
				slog.String("event", "order.id_collision"),
				slog.String("order_id", order.ID),
				slog.Int("attempt", attempt+1),
			)
			continue
		}
		return Order{}, fmt.Errorf("record order: %w", err)
	}
	return Order{}, ErrIDExhausted
}

// List returns the user's orders in insertion order.
func (p *postgresLedger) List(ctx context.Context, userID int64) ([]Order, error) {
	var orders []Order
	err := p.db.SelectContext(ctx, &orders,
		`SELECT id, user_id, service, amount, status, created_at
		 FROM orders WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Balance returns the stored balance, 0 when the user has no row.
func (p *postgresLedger) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := p.db.GetContext(ctx, &balance,
		`SELECT COALESCE((SELECT balance FROM balances WHERE user_id = $1), 0)`, userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// OrderCount reports the total number of recorded orders.
func (p *postgresLedger) OrderCount(ctx context.Context) (int64, error) {
	var count int64
	if err := p.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders`); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// Close closes the underlying connection pool.
func (p *postgresLedger) Close() error {
	return p.db.Close()
}
