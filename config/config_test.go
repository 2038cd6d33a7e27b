package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromYAML(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 4, cfg.Fanout.Workers)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Feed.RenotifyFavorites)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_ADDR", ":9999")
	t.Setenv("APP_FEED_RENOTIFY_FAVORITES", "true")
	t.Setenv("APP_FANOUT_WORKERS", "16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.True(t, cfg.Feed.RenotifyFavorites)
	assert.Equal(t, 16, cfg.Fanout.Workers)
}
