package redisstore

import (
	"context"
	"testing"
	"time"

	"pet-clinic-scheduling/internal/adapters/storage/storetest"
	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) kv.Store {
		_, client := newTestClient(t)
		return New(client)
	})
}

func TestOpen_ParsesURL(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	assert.True(t, mr.Exists("k"))
}

func TestLocker_ExclusiveUntilReleased(t *testing.T) {
	_, client := newTestClient(t)
	l := NewLocker(client, time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "schedule")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 80*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, "schedule")
	require.Error(t, err)

	unlock()

	again, err := l.Lock(ctx, "schedule")
	require.NoError(t, err)
	again()
}

func TestLocker_LeaseExpires(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewLocker(client, 50*time.Millisecond)
	ctx := context.Background()

	_, err := l.Lock(ctx, "schedule")
	require.NoError(t, err)

	// Una instancia caída no bloquea para siempre.
	mr.FastForward(100 * time.Millisecond)

	unlock, err := l.Lock(ctx, "schedule")
	require.NoError(t, err)
	unlock()
}

func TestLocker_ReleaseDoesNotStealForeignLock(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewLocker(client, 50*time.Millisecond)
	ctx := context.Background()

	staleUnlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(100 * time.Millisecond)

	fresh, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	defer fresh()

	staleUnlock()
	assert.True(t, mr.Exists(lockKeyPrefix+"k"), "stale unlock must not release the new holder")
}
