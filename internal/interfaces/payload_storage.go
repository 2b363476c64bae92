package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is missing or has expired
var ErrNotFound = errors.New("not found")

// PayloadStorage stores serialized cache payloads under a single key per kind.
// Writes overwrite; the last successful write wins.
type PayloadStorage interface {
	// Get returns the stored bytes, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Close releases the backend
	Close() error
}
