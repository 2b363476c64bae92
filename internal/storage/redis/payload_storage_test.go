package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/gapper/internal/interfaces"
)

func newTestStorage(t *testing.T) (*PayloadStorage, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)

	store, err := NewPayloadStorage(context.Background(), Options{Addr: server.Addr()}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, server
}

func TestPayloadStorage_RoundTrip(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "gapper:scores")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{"items":[]}`), 0))
	got, err := store.Get(ctx, "gapper:scores")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(got))

	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{"items":[1]}`), 0))
	got, err = store.Get(ctx, "gapper:scores")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[1]}`, string(got))

	require.NoError(t, store.Delete(ctx, "gapper:scores"))
	_, err = store.Get(ctx, "gapper:scores")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	assert.NoError(t, store.Delete(ctx, "gapper:missing"))
}

func TestPayloadStorage_TTL(t *testing.T) {
	store, server := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gapper:news", []byte(`{}`), 30*time.Minute))
	require.NoError(t, store.Set(ctx, "gapper:scores", []byte(`{}`), 0))
	assert.Equal(t, 30*time.Minute, server.TTL("gapper:news"))
	assert.Zero(t, server.TTL("gapper:scores"))

	server.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, "gapper:news")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = store.Get(ctx, "gapper:scores")
	assert.NoError(t, err)
}

func TestPayloadStorage_NegativeTTLNeverExpires(t *testing.T) {
	store, server := newTestStorage(t)

	require.NoError(t, store.Set(context.Background(), "gapper:news", []byte(`{}`), -time.Second))
	assert.True(t, server.Exists("gapper:news"))
	assert.Zero(t, server.TTL("gapper:news"))
}

func TestPayloadStorage_ServerGone(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	store := NewPayloadStorageWithClient(client, arbor.NewLogger())
	defer store.Close()

	server.Close()

	_, err := store.Get(context.Background(), "gapper:scores")
	require.Error(t, err)
	assert.False(t, errors.Is(err, interfaces.ErrNotFound))
	assert.Error(t, store.Set(context.Background(), "gapper:scores", []byte(`{}`), time.Minute))
}
