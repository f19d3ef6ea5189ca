package cache

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotObtained is returned by a Locker when another holder owns the key.
var ErrLockNotObtained = errors.New("cache lock not obtained")

// Store is a byte-oriented key value store with expiry.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix and returns the count.
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Locker hands out short-lived exclusive locks.
type Locker interface {
	// Obtain returns a release func, or ErrLockNotObtained when the key is held.
	Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context), error)
}
