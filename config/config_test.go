package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    StorageMode
		expectError bool
	}{
		{name: "file mode", input: "file", expected: StorageModeFile},
		{name: "redis mode", input: "redis", expected: StorageModeRedis},
		{name: "uppercase is normalized", input: "FILE", expected: StorageModeFile},
		{name: "unknown mode rejected", input: "sqlite", expectError: true},
		{name: "empty rejected", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m StorageMode
			err := m.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "http://localhost:8000", cfg.HTTP.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, StorageModeFile, cfg.Storage.Mode)
	assert.Equal(t, "vitatrack:", cfg.Storage.KeyPrefix)
	assert.Equal(t, time.Second, cfg.Session.RedirectDelay)
	assert.Equal(t, 30*time.Second, cfg.Replay.Interval)
	assert.Equal(t, 4, cfg.Replay.Concurrency)
	assert.Equal(t, []string{"hello@vitatrack.app"}, cfg.Access.OverrideEmails)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VITATRACK_BASE_URL", "https://api.vitatrack.app")
	t.Setenv("STORAGE_MODE", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("ACCESS_OVERRIDE_EMAILS", "ops@vitatrack.app;qa@vitatrack.app")
	t.Setenv("REPLAY_CONCURRENCY", "2")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "https://api.vitatrack.app", cfg.HTTP.BaseURL)
	assert.Equal(t, StorageModeRedis, cfg.Storage.Mode)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"ops@vitatrack.app", "qa@vitatrack.app"}, cfg.Access.OverrideEmails)
	assert.Equal(t, 2, cfg.Replay.Concurrency)
}

func TestSanitize_Guardrails(t *testing.T) {
	cfg := AppConfig{
		HTTP:    HTTPConfig{Timeout: -1},
		Session: SessionConfig{RedirectDelay: -time.Second},
		Replay:  ReplayConfig{Interval: 0, Concurrency: 100},
	}
	cfg.Sanitize()

	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, time.Second, cfg.Session.RedirectDelay)
	assert.Equal(t, time.Second, cfg.Replay.Interval)
	assert.Equal(t, 16, cfg.Replay.Concurrency)
}
