// Package memory is an in-process PayloadStorage for single-instance
// deployments and tests
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/gapper/internal/interfaces"
)

type entry struct {
	value     []byte
	expiresAt time.Time // Zero never expires
}

// PayloadStorage keeps payloads in a map
type PayloadStorage struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewPayloadStorage creates an empty store
func NewPayloadStorage() *PayloadStorage {
	return &PayloadStorage{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock overrides the clock used for expiry
func (s *PayloadStorage) WithClock(now func() time.Time) *PayloadStorage {
	s.now = now
	return s
}

// Get implements PayloadStorage
func (s *PayloadStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, interfaces.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		// A Set may have replaced the entry since the read lock was released
		if current, ok := s.entries[key]; ok && current.expiresAt.Equal(e.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, interfaces.ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set implements PayloadStorage
func (s *PayloadStorage) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete implements PayloadStorage
func (s *PayloadStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Close implements PayloadStorage
func (s *PayloadStorage) Close() error {
	return nil
}
