// Package config defines the top-level configuration for the swap form
// service and provides validation helpers.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SWAPD_* environment variables.
type Config struct {
	Feed     FeedConfig   `toml:"feed"`
	Swap     SwapConfig   `toml:"swap"`
	Redis    RedisConfig  `toml:"redis"`
	Server   ServerConfig `toml:"server"`
	Notify   NotifyConfig `toml:"notify"`
	LogLevel string       `toml:"log_level"`
}

// FeedConfig holds the price feed endpoint and freshness parameters.
type FeedConfig struct {
	URL string `toml:"url"`
	// FetchTimeout bounds a single fetch attempt; on expiry the attempt is
	// cancelled and reported as a timeout.
	FetchTimeout duration `toml:"fetch_timeout"`
	// StaleAfter is how long after the last successful fetch the displayed
	// rates are considered outdated.
	StaleAfter duration `toml:"stale_after"`
	// MirrorTTL is the expiry for the redis price mirror. Zero disables it.
	MirrorTTL duration `toml:"mirror_ttl"`
}

// SwapConfig holds the session controller parameters.
type SwapConfig struct {
	// Debounce is the quiet period after the last keystroke before the
	// derived amount is recomputed.
	Debounce duration `toml:"debounce"`
	// SubmitDelay is the fixed duration of the simulated swap submission.
	SubmitDelay duration `toml:"submit_delay"`
	// MaxAmount is the upper bound accepted by input validation.
	MaxAmount float64 `toml:"max_amount"`
	// DisplayPrecision is the number of decimals shown for exchange rates.
	DisplayPrecision int `toml:"display_precision"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey enables authentication when non-empty.
	APIKey string `toml:"api_key"`
	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `toml:"rate_limit_per_minute"`
}

// NotifyConfig holds notification channel credentials. Telegram and Discord
// are optional operator channels; UI toasts always go through the signal bus.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "300ms", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "10s" or "300ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the stock parameters of the swap
// form: a 10s fetch timeout, 300ms input debounce, 5m staleness threshold,
// and a 2s simulated submission.
func Defaults() Config {
	return Config{
		Feed: FeedConfig{
			URL:          "https://interview.switcheo.com/prices.json",
			FetchTimeout: duration{10 * time.Second},
			StaleAfter:   duration{5 * time.Minute},
			MirrorTTL:    duration{10 * time.Minute},
		},
		Swap: SwapConfig{
			Debounce:         duration{300 * time.Millisecond},
			SubmitDelay:      duration{2 * time.Second},
			MaxAmount:        1e15,
			DisplayPrecision: 6,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Port:               8000,
			CORSOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimitPerMinute: 0,
		},
		Notify: NotifyConfig{
			Events: []string{"prices_loaded", "prices_failed", "swap_submitted", "error"},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Feed
	if c.Feed.URL == "" {
		errs = append(errs, "feed: url must not be empty")
	} else if u, err := url.Parse(c.Feed.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("feed: url %q is not a valid absolute URL", c.Feed.URL))
	}
	if c.Feed.FetchTimeout.Duration <= 0 {
		errs = append(errs, "feed: fetch_timeout must be positive")
	}
	if c.Feed.StaleAfter.Duration <= 0 {
		errs = append(errs, "feed: stale_after must be positive")
	}
	if c.Feed.MirrorTTL.Duration < 0 {
		errs = append(errs, "feed: mirror_ttl must not be negative")
	}

	// Swap
	if c.Swap.Debounce.Duration < 0 {
		errs = append(errs, "swap: debounce must not be negative")
	}
	if c.Swap.SubmitDelay.Duration < 0 {
		errs = append(errs, "swap: submit_delay must not be negative")
	}
	if c.Swap.MaxAmount <= 0 {
		errs = append(errs, "swap: max_amount must be > 0")
	}
	if c.Swap.DisplayPrecision < 0 || c.Swap.DisplayPrecision > 18 {
		errs = append(errs, fmt.Sprintf("swap: display_precision must be 0-18, got %d", c.Swap.DisplayPrecision))
	}

	// Redis. An empty addr disables the mirror, rate limiter, and live
	// updates; the rest only matters when redis is in play.
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitPerMinute < 0 {
		errs = append(errs, "server: rate_limit_per_minute must not be negative")
	}

	// Notify: Telegram fields must be set together, or both empty.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
