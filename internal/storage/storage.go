// Package storage owns the order ledger: per-user order history and balances
// behind an injectable backing store.
package storage

import (
	"context"
	"errors"
	"time"
)

// Status enumerates the lifecycle of an order. Orders are created Pending;
// later transitions are performed by the administrator outside this system.
type Status string

const (
	// StatusPending marks a freshly submitted order awaiting admin review.
	StatusPending Status = "Pending"
	// StatusApproved marks an order cleared by the administrator.
	StatusApproved Status = "Approved"
	// StatusRejected marks an order declined by the administrator.
	StatusRejected Status = "Rejected"
)

// ErrIDExhausted is returned when a fresh unique order id could not be
// generated within the retry budget.
var ErrIDExhausted = errors.New("storage: order id space exhausted")

// Order is the immutable record of a completed purchase or withdrawal flow.
type Order struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	Service   string    `db:"service"`
	Amount    int64     `db:"amount"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// Ledger is the order/balance store consumed by the bot handlers.
// The memory implementation is the default; the postgres implementation is
// selected by configuration.
type Ledger interface {
	// EnsureUser initializes the user's balance to 0 on first contact.
	EnsureUser(ctx context.Context, userID int64) error
	// Record appends a new Pending order with a fresh unique id.
	Record(ctx context.Context, userID int64, service string, amount int64) (Order, error)
	// List returns the user's orders in insertion order.
	List(ctx context.Context, userID int64) ([]Order, error)
	// Balance returns the user's balance, 0 for unseen users.
	Balance(ctx context.Context, userID int64) (int64, error)
	// OrderCount reports the total number of recorded orders.
	OrderCount(ctx context.Context) (int64, error)
	// Close releases backing resources.
	Close() error
}

// Config holds PostgreSQL connection settings for the postgres ledger.
type Config struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}
