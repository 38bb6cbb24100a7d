package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxappeal/internal/platform/config"
)

func TestBuild(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory backend without provider credential", func(t *testing.T) {
		cfg := config.FromEnv()
		cfg.Cache.Backend = config.CacheBackendMemory
		cfg.Provider.APIKey = ""
		cfg.Provider.MonthlyCeiling = 40

		a, err := Build(context.Background(), cfg, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = a.Close() })

		require.NotNil(t, a.Service)
		assert.Equal(t, 40, a.Service.Quota().Ceiling)
		assert.Equal(t, 0, a.Service.Quota().Used)
		assert.NoError(t, a.Health(context.Background()))
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.FromEnv()
		cfg.Cache.Backend = "etcd"

		_, err := Build(context.Background(), cfg, logger)
		assert.ErrorContains(t, err, "etcd")
	})

	t.Run("redis backend requires url", func(t *testing.T) {
		cfg := config.FromEnv()
		cfg.Cache.Backend = config.CacheBackendRedis
		cfg.Redis.URL = ""

		_, err := Build(context.Background(), cfg, logger)
		assert.ErrorContains(t, err, "REDIS_URL")
	})
}
