package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tokendesk/swapd/internal/domain"
)

// FeedController defines the methods the status handler requires from the
// swap controller.
type FeedController interface {
	Status() domain.FeedStatus
	Refresh(ctx context.Context)
}

// StatusHandler serves the price feed status and the manual refresh trigger.
type StatusHandler struct {
	feed   FeedController
	mirror domain.PriceMirror
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler. The mirror may be nil when the
// deployment runs without Redis.
func NewStatusHandler(feed FeedController, mirror domain.PriceMirror, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		feed:   feed,
		mirror: mirror,
		logger: logger,
	}
}

// GetStatus returns the feed status and, when a mirror is configured, the age
// of the mirrored price snapshot. With ?symbol= it also includes the mirrored
// price of that token.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"feed": h.feed.Status(),
	}

	if h.mirror != nil {
		age, err := h.mirror.Age(r.Context())
		switch {
		case err == nil:
			resp["mirror_age_seconds"] = int64(age.Seconds())
		case errors.Is(err, domain.ErrNotFound):
			// No mirrored snapshot yet.
		default:
			h.logger.WarnContext(r.Context(), "handler: mirror age lookup failed",
				slog.String("error", err.Error()),
			)
		}

		if symbol := r.URL.Query().Get("symbol"); symbol != "" {
			price, ts, err := h.mirror.GetPrice(r.Context(), symbol)
			switch {
			case err == nil:
				resp["mirror_price"] = map[string]any{
					"symbol":     symbol,
					"price":      price,
					"updated_at": ts,
				}
			case errors.Is(err, domain.ErrNotFound):
				// Token absent from the mirrored snapshot.
			default:
				h.logger.WarnContext(r.Context(), "handler: mirror price lookup failed",
					slog.String("symbol", symbol),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Refresh triggers a fetch of the price feed. The fetch runs in the
// background; clients follow its progress on the status endpoint or the
// prices channel.
// POST /api/prices/refresh
func (h *StatusHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.feed.Refresh(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "refreshing",
	})
}
