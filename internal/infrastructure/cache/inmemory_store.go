package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// cacheEntry wraps a cached value with expiration time
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryStore implements Store in process memory. It backs single-instance
// deployments and tests.
type InMemoryStore struct {
	entries sync.Map // map[string]*cacheEntry
	stopCh  chan struct{}
	stopped int32
	now     func() time.Time
}

// NewInMemoryStore creates a store and starts its expiry sweeper
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	go s.cleanupExpired(defaultCleanupInterval)
	return s
}

// Get implements Store
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, ok := s.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := value.(*cacheEntry)
	if entry.isExpired(s.now()) {
		s.entries.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Store. A zero ttl never expires.
func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries.Store(key, entry)
	return nil
}

// Delete implements Store
func (s *InMemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.entries.Delete(k)
	}
	return nil
}

// DeletePrefix implements Store
func (s *InMemoryStore) DeletePrefix(_ context.Context, prefix string) (int64, error) {
	var deleted int64
	s.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			s.entries.Delete(key)
			deleted++
		}
		return true
	})
	return deleted, nil
}

// Stop stops the expiry sweeper. It is safe to call more than once.
func (s *InMemoryStore) Stop() {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
}

func (s *InMemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := s.now()
			s.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired(now) {
					s.entries.Delete(key)
				}
				return true
			})
		case <-s.stopCh:
			return
		}
	}
}

// LocalLocker implements Locker within one process
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]time.Time{}, now: time.Now}
}

// Obtain implements Locker
func (l *LocalLocker) Obtain(_ context.Context, key string, ttl time.Duration) (func(context.Context), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, ErrLockNotObtained
	}
	until := now.Add(ttl)
	l.held[key] = until
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(until) {
			delete(l.held, key)
		}
	}, nil
}

var (
	_ Store  = (*InMemoryStore)(nil)
	_ Locker = (*LocalLocker)(nil)
)
