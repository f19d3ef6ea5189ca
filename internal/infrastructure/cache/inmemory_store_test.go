package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_GetSet(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Stop()

	ctx := context.Background()

	// Test cache miss
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	// Test cache hit
	data, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(data))
}

func TestInMemoryStore_Expiry(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Stop()

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Second)

	_, ok, _ := store.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestInMemoryStore_DeletePrefix(t *testing.T) {
	store := NewInMemoryStore()
	defer store.Stop()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "p:report:1:lines", []byte("a"), 0))
	require.NoError(t, store.Set(ctx, "p:report:1:summaries", []byte("b"), 0))
	require.NoError(t, store.Set(ctx, "p:report:10:lines", []byte("c"), 0))

	deleted, err := store.DeletePrefix(ctx, "p:report:1:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, ok, _ := store.Get(ctx, "p:report:10:lines")
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "p:report:10:lines"))
	_, ok, _ = store.Get(ctx, "p:report:10:lines")
	assert.False(t, ok)

	// Stop twice is harmless
	store.Stop()
}

func TestLocalLocker(t *testing.T) {
	locker := NewLocalLocker()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }

	ctx := context.Background()
	release, err := locker.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotObtained)

	release(ctx)
	release2, err := locker.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	// An expired lock can be taken over
	now = now.Add(2 * time.Second)
	_, err = locker.Obtain(ctx, "k", time.Second)
	require.NoError(t, err)

	// A stale release does not free the new holder
	release2(ctx)
	_, err = locker.Obtain(ctx, "k", time.Second)
	assert.ErrorIs(t, err, ErrLockNotObtained)
}
