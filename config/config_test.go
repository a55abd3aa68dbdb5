package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Remote.MinRequestInterval)
	assert.Equal(t, 3*time.Second, cfg.Remote.Accepted202Delay)
	assert.Equal(t, 20, cfg.Remote.ChunkSize)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 168*time.Hour, cfg.Sync.StaleAfter)
	assert.Equal(t, 72*time.Hour, cfg.Queue.Retention)
	assert.Equal(t, "meeplesync.db", cfg.DB.Path)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEEPLE_PORT", "9090")
	t.Setenv("MEEPLE_BGG_TOKEN", "tok123")
	t.Setenv("MEEPLE_BGG_USERNAME", "meeple_tester")
	t.Setenv("MEEPLE_MIN_REQUEST_INTERVAL", "250ms")
	t.Setenv("MEEPLE_AUTH_ENABLED", "true")
	t.Setenv("MEEPLE_API_KEYS", "key-a, key-b")
	t.Setenv("MEEPLE_RATE_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tok123", cfg.Remote.Token)
	assert.Equal(t, "meeple_tester", cfg.Remote.Username)
	assert.Equal(t, 250*time.Millisecond, cfg.Remote.MinRequestInterval)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.Auth.APIKeys)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("MEEPLE_PORT", "not-a-number")
	t.Setenv("MEEPLE_SYNC_INTERVAL", "soonish")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Interval)
}
