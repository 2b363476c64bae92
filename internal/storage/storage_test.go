package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/common"
	"github.com/ternarybob/gapper/internal/interfaces"
	"github.com/ternarybob/gapper/internal/storage/badger"
	"github.com/ternarybob/gapper/internal/storage/memory"
)

// exercise runs the shared PayloadStorage contract against a backend
func exercise(t *testing.T, store interfaces.PayloadStorage) {
	ctx := context.Background()

	_, err := store.Get(ctx, "gapper:scores")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{"a":1}`), 0))
	got, err := store.Get(ctx, "gapper:scores")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	// Last write wins
	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{"a":2}`), time.Hour))
	got, err = store.Get(ctx, "gapper:scores")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	require.NoError(t, store.Delete(ctx, "gapper:scores"))
	_, err = store.Get(ctx, "gapper:scores")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	assert.NoError(t, store.Delete(ctx, "gapper:missing"))
}

func TestMemoryPayloadStorage(t *testing.T) {
	exercise(t, memory.NewPayloadStorage())
}

func TestMemoryPayloadStorage_Expiry(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	store := memory.NewPayloadStorage().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestMemoryPayloadStorage_ExpiryKeepsConcurrentSet(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)
	ctx := context.Background()

	var store *memory.PayloadStorage
	replace := false
	store = memory.NewPayloadStorage().WithClock(func() time.Time {
		if replace {
			// Lands between the expiry check and the delete
			replace = false
			require.NoError(t, store.Set(ctx, "k", []byte("fresh"), 0))
		}
		return now
	})

	require.NoError(t, store.Set(ctx, "k", []byte("stale"), time.Minute))
	now = now.Add(time.Minute)
	replace = true

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestBadgerPayloadStorage(t *testing.T) {
	db, err := badger.NewBadgerDB(arbor.NewLogger(), "")
	require.NoError(t, err)
	store := badger.NewPayloadStorage(db, arbor.NewLogger())
	defer store.Close()

	exercise(t, store)
}

func TestBadgerPayloadStorage_PurgeExpired(t *testing.T) {
	db, err := badger.NewBadgerDB(arbor.NewLogger(), "")
	require.NoError(t, err)
	store := badger.NewPayloadStorage(db, arbor.NewLogger())
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "gapper:news", []byte(`{}`), time.Millisecond))
	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{}`), time.Hour))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, store.PurgeExpired(ctx))

	_, err = store.Get(ctx, "gapper:scores")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "gapper:news")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestBadgerPayloadStorage_OnDisk(t *testing.T) {
	db, err := badger.NewBadgerDB(arbor.NewLogger(), t.TempDir()+"/cache")
	require.NoError(t, err)
	store := badger.NewPayloadStorage(db, arbor.NewLogger())
	defer store.Close()

	exercise(t, store)
}

func TestNewPayloadStorage(t *testing.T) {
	ctx := context.Background()
	logger := arbor.NewLogger()

	store, err := NewPayloadStorage(ctx, logger, &common.CacheConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memory.PayloadStorage{}, store)

	_, err = NewPayloadStorage(ctx, logger, &common.CacheConfig{Backend: "etcd"})
	assert.Error(t, err)

	_, err = NewPayloadStorage(ctx, logger, &common.CacheConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewArchiveStorage_Disabled(t *testing.T) {
	archive, err := NewArchiveStorage(arbor.NewLogger(), &common.ArchiveConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, archive)
}
