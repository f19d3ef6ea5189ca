package cache

import (
	"context"
	"testing"

	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendFactory_Fallback(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
	ctx := context.Background()

	backend, err := NewBackendFactory(cfg).CreateBackend(ctx)
	require.NoError(t, err)
	defer backend.Close()
	assert.False(t, backend.Shared())
	assert.NoError(t, backend.Ping(ctx))

	_, err = NewBackendFactory(cfg, WithInMemoryFallback(false)).CreateBackend(ctx)
	assert.Error(t, err)
}
