package storage

import (
	"context"
	"sync"
	"time"
)

// memoryLedger keeps balances and order history in process memory.
// All state is lost on restart.
type memoryLedger struct {
	mu       sync.RWMutex
	balances map[int64]int64
	orders   map[int64][]Order
	ids      map[string]struct{}
}

// NewMemoryLedger constructs the in-memory Ledger used by default and in tests.
func NewMemoryLedger() Ledger {
	return &memoryLedger{
		balances: make(map[int64]int64),
		orders:   make(map[int64][]Order),
		ids:      make(map[string]struct{}),
	}
}

// EnsureUser initializes the balance to 0 if the user has not been seen yet.
func (m *memoryLedger) EnsureUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.balances[userID]; !ok {
		m.balances[userID] = 0
	}
	return nil
}

// Record appends a new Pending order for the user with a fresh unique id.
func (m *memoryLedger) Record(_ context.Context, userID int64, service string, amount int64) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return Order{}, ErrIDExhausted
		}
		id = NewOrderID()
		if _, taken := m.ids[id]; !taken {
			break
		}
	}

	order := Order{
		ID:        id,
		UserID:    userID,
		Service:   service,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.ids[id] = struct{}{}
	m.orders[userID] = append(m.orders[userID], order)
	return order, nil
}

// List returns the user's orders in insertion order, nil for unseen users.
func (m *memoryLedger) List(_ context.Context, userID int64) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.orders[userID]
	if len(history) == 0 {
		return nil, nil
	}
	return append([]Order(nil), history...), nil
}

// Balance returns the user's balance, defaulting to 0.
func (m *memoryLedger) Balance(_ context.Context, userID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID], nil
}

// OrderCount reports the total number of orders across all users.
func (m *memoryLedger) OrderCount(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.ids)), nil
}

// Close is a no-op for the memory ledger.
func (m *memoryLedger) Close() error {
	return nil
}
