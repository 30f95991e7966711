package bootstrap

import (
	"context"
	"io"
	"testing"

	"ims-storefront-bridge/internal/config"
	"ims-storefront-bridge/internal/infrastructure/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, NewLogger(io.Discard, "debug").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, NewLogger(io.Discard, "warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(io.Discard, "").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger(io.Discard, "loud").GetLevel())
}

func TestNewSessionStore(t *testing.T) {
	t.Run("requires redis", func(t *testing.T) {
		cfg := &config.Config{}

		store, client, err := newSessionStore(context.Background(), cfg, zerolog.Nop())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_ADDR")
		assert.Nil(t, store)
		assert.Nil(t, client)
	})

	t.Run("memory sessions when allowed", func(t *testing.T) {
		cfg := &config.Config{Install: config.InstallConfig{MemorySessions: true}}

		store, client, err := newSessionStore(context.Background(), cfg, zerolog.Nop())

		require.NoError(t, err)
		assert.IsType(t, &repository.InMemorySessionStore{}, store)
		assert.Nil(t, client)
	})
}
