package cache

import (
	"context"
	"fmt"

	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend bundles a store, its locker and the resources to release.
type Backend struct {
	Store  Store
	Locker Locker
	client *redis.Client
	local  *InMemoryStore
}

// Close releases the Redis connection or stops the in-memory sweeper.
func (b *Backend) Close() error {
	if b.local != nil {
		b.local.Stop()
	}
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// Shared reports whether the backend is visible to other instances.
func (b *Backend) Shared() bool {
	return b.client != nil
}

// Ping checks the Redis connection. The in-memory backend is always up.
func (b *Backend) Ping(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Ping(ctx).Err()
}

// BackendFactory creates cache backends based on configuration
type BackendFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BackendFactoryOption is a functional option for configuring the factory
type BackendFactoryOption func(*BackendFactory)

// WithFactoryLogger sets the logger for the factory
func WithFactoryLogger(logger *zap.Logger) BackendFactoryOption {
	return func(f *BackendFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory storage
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) BackendFactoryOption {
	return func(f *BackendFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBackendFactory creates a new factory
func NewBackendFactory(cfg config.RedisConfig, opts ...BackendFactoryOption) *BackendFactory {
	f := &BackendFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisBackend connects to Redis
func (f *BackendFactory) CreateRedisBackend(ctx context.Context) (*Backend, error) {
	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Store:  NewRedisStore(client, f.logger),
		Locker: NewRedisLocker(client),
		client: client,
	}, nil
}

// CreateInMemoryBackend creates a process-local backend.
// Entries are not shared across instances, so invalidations on one
// instance are not seen by the others until the TTL expires.
func (f *BackendFactory) CreateInMemoryBackend() *Backend {
	store := NewInMemoryStore()
	return &Backend{
		Store:  store,
		Locker: NewLocalLocker(),
		local:  store,
	}
}

// CreateBackend tries Redis first and falls back to in-memory when allowed
func (f *BackendFactory) CreateBackend(ctx context.Context) (*Backend, error) {
	backend, err := f.CreateRedisBackend(ctx)
	if err == nil {
		f.logger.Info("using Redis report config cache", zap.String("addr", f.redisConfig.Addr()))
		return backend, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for report config cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report config cache",
		zap.Error(err),
	)
	return f.CreateInMemoryBackend(), nil
}
