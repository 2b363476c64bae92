// Package cache reads and writes the scores and news payloads the dashboard
// polls. Reads never fail: a miss or an undecodable value yields the empty
// "not yet produced" payload.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/models"
)

// Store is a typed view over a PayloadStorage with one key per payload kind
type Store struct {
	storage interfaces.PayloadStorage
	logger  arbor.ILogger
	prefix  string
	ttls    map[models.PayloadKind]time.Duration

	// Serializes compare-and-write within this process
	mu sync.Mutex
}

// NewStore creates a payload store. TTLs come from [cache].
func NewStore(storage interfaces.PayloadStorage, config common.CacheConfig, logger arbor.ILogger) *Store {
	return &Store{
		storage: storage,
		logger:  logger,
		prefix:  config.KeyPrefix,
		ttls: map[models.PayloadKind]time.Duration{
			models.PayloadScores: common.ParseDurationOr(config.ScoresTTL, 0),
			models.PayloadNews:   common.ParseDurationOr(config.NewsTTL, 0),
		},
	}
}

// Key returns the storage key of a payload kind
func (s *Store) Key(kind models.PayloadKind) string {
	if s.prefix == "" {
		return string(kind)
	}
	return s.prefix + ":" + string(kind)
}

// TTL returns the expiry used for kind; zero never expires
func (s *Store) TTL(kind models.PayloadKind) time.Duration {
	return s.ttls[kind]
}

// Close releases the underlying storage
func (s *Store) Close() error {
	return s.storage.Close()
}

// GetPayload reads the payload of kind. It never returns an error.
func GetPayload[T any](ctx context.Context, s *Store, kind models.PayloadKind) models.CachePayload[T] {
	data, err := s.storage.Get(ctx, s.Key(kind))
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Cache read failed, serving empty payload")
		}
		return models.EmptyPayload[T]()
	}

	var payload models.CachePayload[T]
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Cached payload is not decodable, serving empty payload")
		return models.EmptyPayload[T]()
	}
	if payload.Items == nil {
		payload.Items = []T{}
	}
	return payload
}

// SetPayload writes payload under kind with the configured TTL. A payload
// older than the one already cached is discarded and false is returned.
func SetPayload[T any](ctx context.Context, s *Store, kind models.PayloadKind, payload models.CachePayload[T]) (bool, error) {
	if payload.Items == nil {
		payload.Items = []T{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached := s.generatedAt(ctx, kind); cached != nil && payload.GeneratedAt != nil && cached.After(*payload.GeneratedAt) {
		s.logger.Debug().
			Str("kind", string(kind)).
			Str("cached", cached.Format(time.RFC3339)).
			Str("discarded", payload.GeneratedAt.Format(time.RFC3339)).
			Msg("Newer payload already cached, discarding result")
		return false, nil
	}

	if err := s.storage.Set(ctx, s.Key(kind), data, s.TTL(kind)); err != nil {
		return false, fmt.Errorf("failed to write %s payload: %w", kind, err)
	}
	return true, nil
}

// generatedAt reads only the timestamp of the cached payload
func (s *Store) generatedAt(ctx context.Context, kind models.PayloadKind) *time.Time {
	data, err := s.storage.Get(ctx, s.Key(kind))
	if err != nil {
		return nil
	}
	var header struct {
		GeneratedAt *time.Time `json:"generatedAt"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil
	}
	return header.GeneratedAt
}

// Scores returns the cached scores payload
func (s *Store) Scores(ctx context.Context) models.CachePayload[models.ScoredCandidate] {
	return GetPayload[models.ScoredCandidate](ctx, s, models.PayloadScores)
}

// News returns the cached news payload
func (s *Store) News(ctx context.Context) models.CachePayload[models.NewsItem] {
	return GetPayload[models.NewsItem](ctx, s, models.PayloadNews)
}

// SetScores writes the scores payload
func (s *Store) SetScores(ctx context.Context, payload models.CachePayload[models.ScoredCandidate]) (bool, error) {
	return SetPayload(ctx, s, models.PayloadScores, payload)
}

// SetNews writes the news payload
func (s *Store) SetNews(ctx context.Context, payload models.CachePayload[models.NewsItem]) (bool, error) {
	return SetPayload(ctx, s, models.PayloadNews, payload)
}
