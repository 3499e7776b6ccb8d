package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	require.Equal(t, "https://interview.switcheo.com/prices.json", cfg.Feed.URL)
	require.Equal(t, 10*time.Second, cfg.Feed.FetchTimeout.Duration)
	require.Equal(t, 5*time.Minute, cfg.Feed.StaleAfter.Duration)
	require.Equal(t, 300*time.Millisecond, cfg.Swap.Debounce.Duration)
	require.Equal(t, 2*time.Second, cfg.Swap.SubmitDelay.Duration)
	require.Equal(t, 1e15, cfg.Swap.MaxAmount)
	require.Equal(t, 8000, cfg.Server.Port)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestLoadTOMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[feed]
url = "https://example.com/prices.json"
fetch_timeout = "3s"

[swap]
debounce = "150ms"

[server]
port = 9100
`), 0o600))

	t.Setenv("SWAPD_SERVER_PORT", "9200")
	t.Setenv("SWAPD_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	// TOML overrides defaults.
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "https://example.com/prices.json", cfg.Feed.URL)
	require.Equal(t, 3*time.Second, cfg.Feed.FetchTimeout.Duration)
	require.Equal(t, 150*time.Millisecond, cfg.Swap.Debounce.Duration)

	// Environment overrides TOML.
	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)

	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Feed.URL = "not a url"
	cfg.Swap.MaxAmount = 0
	cfg.Server.Port = 0
	cfg.Notify.TelegramToken = "token-without-chat-id"

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "feed: url")
	require.Contains(t, err.Error(), "swap: max_amount")
	require.Contains(t, err.Error(), "server: port")
	require.Contains(t, err.Error(), "telegram_token")
}

func TestRedactedConfigHidesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Server.APIKey = "key"
	cfg.Notify.TelegramToken = "tok"
	cfg.Notify.TelegramChatID = "42"

	red := RedactedConfig(&cfg)
	require.Equal(t, "***", red.Redis.Password)
	require.Equal(t, "***", red.Server.APIKey)
	require.Equal(t, "***", red.Notify.TelegramToken)

	// The original is untouched.
	require.Equal(t, "hunter2", cfg.Redis.Password)
}
