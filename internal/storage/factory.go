package storage

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/storage/archive"
	"github.com/ternarybob/gapper/internal/storage/badger"
	"github.com/ternarybob/gapper/internal/storage/memory"
	"github.com/ternarybob/gapper/internal/storage/redis"
)

// NewPayloadStorage creates the payload backend selected by [cache].backend
func NewPayloadStorage(ctx context.Context, logger arbor.ILogger, config *common.CacheConfig) (interfaces.PayloadStorage, error) {
	switch config.Backend {
	case "memory", "":
		return memory.NewPayloadStorage(), nil
	case "badger":
		db, err := badger.NewBadgerDB(logger, config.BadgerPath)
		if err != nil {
			return nil, err
		}
		store := badger.NewPayloadStorage(db, logger)
		if err := store.PurgeExpired(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to purge expired payloads")
		}
		return store, nil
	case "redis":
		store, err := redis.NewPayloadStorage(ctx, redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (expected memory, badger or redis)", config.Backend)
	}
}

// NewArchiveStorage opens the scored-run archive, or returns nil when it is
// disabled
func NewArchiveStorage(logger arbor.ILogger, config *common.ArchiveConfig) (interfaces.ArchiveStorage, error) {
	if !config.Enabled {
		return nil, nil
	}
	store, err := archive.Open(config.Driver, config.DSN, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}
