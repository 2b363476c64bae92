// Package redis is a PayloadStorage shared by several gapper instances
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/interfaces"
)

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// PayloadStorage stores payloads as plain redis strings with native TTLs
type PayloadStorage struct {
	client *redis.Client
	logger arbor.ILogger
}

// NewPayloadStorage connects and pings the server
func NewPayloadStorage(ctx context.Context, options Options, logger arbor.ILogger) (*PayloadStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", options.Addr, err)
	}

	logger.Debug().Str("addr", options.Addr).Int("db", options.DB).Msg("Connected to redis")

	return &PayloadStorage{client: client, logger: logger}, nil
}

// NewPayloadStorageWithClient wraps an existing client
func NewPayloadStorageWithClient(client *redis.Client, logger arbor.ILogger) *PayloadStorage {
	return &PayloadStorage{client: client, logger: logger}
}

// Get implements PayloadStorage
func (s *PayloadStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payload: %w", err)
	}
	return value, nil
}

// Set implements PayloadStorage. A zero ttl keeps the key until overwritten.
func (s *PayloadStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store payload: %w", err)
	}
	return nil
}

// Delete implements PayloadStorage
func (s *PayloadStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	return nil
}

// Close implements PayloadStorage
func (s *PayloadStorage) Close() error {
	return s.client.Close()
}
