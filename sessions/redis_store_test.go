package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/clipstream/authcore/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*sessions.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return sessions.NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreSetGetClear(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Set(ctx, "user-1", "token-1"))
	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "token-1", got)

	require.NoError(t, store.Clear(ctx, "user-1"))
	_, err = store.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Clear(ctx, "user-1"))
}

func TestRedisStoreSlotExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user-1", "token-1"))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestRedisStoreCompareAndSwap(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	err := store.CompareAndSwap(ctx, "user-1", "token-1", "token-2")
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Set(ctx, "user-1", "token-1"))

	err = store.CompareAndSwap(ctx, "user-1", "wrong-token", "token-2")
	require.ErrorIs(t, err, sessions.ErrTokenMismatch)

	require.NoError(t, store.CompareAndSwap(ctx, "user-1", "token-1", "token-2"))
	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "token-2", got)

	// First swap consumed the token, a replay loses.
	err = store.CompareAndSwap(ctx, "user-1", "token-1", "token-3")
	require.ErrorIs(t, err, sessions.ErrTokenMismatch)
}

func TestRedisStoreCompareAndClear(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	err := store.CompareAndClear(ctx, "user-1", "token-1")
	require.ErrorIs(t, err, sessions.ErrNoSession)

	require.NoError(t, store.Set(ctx, "user-1", "token-1"))

	err = store.CompareAndClear(ctx, "user-1", "wrong-token")
	require.ErrorIs(t, err, sessions.ErrTokenMismatch)

	require.NoError(t, store.CompareAndClear(ctx, "user-1", "token-1"))
	_, err = store.Get(ctx, "user-1")
	require.ErrorIs(t, err, sessions.ErrNoSession)
}
