// Package app provides the top-level application lifecycle management for the
// swap form backend. It wires together all dependencies (price feed, redis
// infrastructure, notifications, the swap controller) and runs the HTTP and
// WebSocket server until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tokendesk/swapd/internal/config"
	"github.com/tokendesk/swapd/internal/server"
	"github.com/tokendesk/swapd/internal/server/handler"
	"github.com/tokendesk/swapd/internal/server/ws"
	"github.com/tokendesk/swapd/internal/swap"
)

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the swap
// controller and the HTTP server, and blocks until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("feed_url", a.cfg.Feed.URL),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	ctrl := swap.NewController(swap.Config{
		Debounce:         a.cfg.Swap.Debounce.Duration,
		SubmitDelay:      a.cfg.Swap.SubmitDelay.Duration,
		StaleAfter:       a.cfg.Feed.StaleAfter.Duration,
		MaxAmount:        a.cfg.Swap.MaxAmount,
		DisplayPrecision: a.cfg.Swap.DisplayPrecision,
	}, deps.Feed, deps.Mirror, deps.SignalBus, deps.Notifier, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	// Initial price load. Runs in the background; the form reports loading
	// until it resolves.
	ctrl.Refresh(ctx)

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, ctrl, a.logger)
		g.Go(func() error {
			if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("app: ws hub: %w", err)
			}
			return nil
		})
	}

	srv := server.NewServer(server.Config{
		Port:               a.cfg.Server.Port,
		CORSOrigins:        a.cfg.Server.CORSOrigins,
		APIKey:             a.cfg.Server.APIKey,
		RateLimitPerMinute: a.cfg.Server.RateLimitPerMinute,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Tokens:  handler.NewTokensHandler(ctrl, a.logger),
		Session: handler.NewSessionHandler(ctrl, a.logger),
		Status:  handler.NewStatusHandler(ctrl, deps.Mirror, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
