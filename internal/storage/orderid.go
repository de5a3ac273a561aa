package storage

import "math/rand/v2"

const (
	orderIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// OrderIDLength is the fixed length of generated order ids.
	OrderIDLength = 7

	// maxIDAttempts bounds retries when a generated id collides with an
	// existing order.
	maxIDAttempts = 5
)

// NewOrderID returns a random 7-character uppercase alphanumeric id.
// Uniqueness is enforced by the ledger on insert, not here.
func NewOrderID() string {
	buf := make([]byte, OrderIDLength)
	for i := range buf {
		buf[i] = orderIDAlphabet[rand.IntN(len(orderIDAlphabet))]
	}
	return string(buf)
}
