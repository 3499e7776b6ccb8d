package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tokendesk/swapd/internal/cache/redis"
	"github.com/tokendesk/swapd/internal/config"
	"github.com/tokendesk/swapd/internal/domain"
	"github.com/tokendesk/swapd/internal/notify"
	"github.com/tokendesk/swapd/internal/pricefeed"
)

// Dependencies bundles every domain-level dependency the application needs to
// operate. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Feed
	Feed *pricefeed.Client

	// Redis-backed infrastructure. All nil when redis.addr is empty.
	Mirror      domain.PriceMirror
	RateLimiter domain.RateLimiter
	SignalBus   domain.SignalBus

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Feed: pricefeed.NewClient(cfg.Feed.URL, cfg.Feed.FetchTimeout.Duration),
	}

	// --- Redis (optional; the form runs standalone without it) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Mirror = redis.NewPriceMirror(redisClient, cfg.Feed.MirrorTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
		deps.SignalBus = redis.NewSignalBus(redisClient)
	} else {
		logger.InfoContext(ctx, "redis.addr not set, running without mirror, rate limiting, and live updates")
	}

	// --- Notifications ---
	var senders []notify.Sender
	if deps.SignalBus != nil {
		senders = append(senders, notify.NewBusSender(deps.SignalBus))
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
