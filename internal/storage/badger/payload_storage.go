package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/gapper/internal/interfaces"
)

// payloadRecord is one stored payload. ExpiresAt is unix nanoseconds; zero
// never expires.
type payloadRecord struct {
	Key       string
	Data      []byte
	ExpiresAt int64 `badgerholdIndex:"ExpiresAt"`
	UpdatedAt time.Time
}

// PayloadStorage implements PayloadStorage on Badger
type PayloadStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
	now    func() time.Time
}

// NewPayloadStorage creates a payload store over db
func NewPayloadStorage(db *BadgerDB, logger arbor.ILogger) *PayloadStorage {
	return &PayloadStorage{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Get implements PayloadStorage. Expired records are removed on read.
func (s *PayloadStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var record payloadRecord
	err := s.db.Store().Get(key, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}

	if record.ExpiresAt > 0 && s.now().UnixNano() >= record.ExpiresAt {
		if err := s.db.Store().Delete(key, &payloadRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete expired payload")
		}
		return nil, interfaces.ErrNotFound
	}

	return record.Data, nil
}

// Set implements PayloadStorage
func (s *PayloadStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	record := payloadRecord{
		Key:       key,
		Data:      value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		record.ExpiresAt = now.Add(ttl).UnixNano()
	}

	if err := s.db.Store().Upsert(key, &record); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}

// Delete implements PayloadStorage
func (s *PayloadStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(key, &payloadRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired record
func (s *PayloadStorage) PurgeExpired(ctx context.Context) error {
	now := s.now().UnixNano()
	query := badgerhold.Where("ExpiresAt").Gt(int64(0)).And("ExpiresAt").Le(now)
	if err := s.db.Store().DeleteMatching(&payloadRecord{}, query); err != nil {
		return fmt.Errorf("failed to purge expired payloads: %w", err)
	}
	return nil
}

// Close implements PayloadStorage
func (s *PayloadStorage) Close() error {
	return s.db.Close()
}
