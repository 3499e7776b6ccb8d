package domain

import (
	"context"
	"time"
)

// PriceMirror is an ephemeral copy of the latest normalized price table,
// written after every successful fetch and expired by TTL. It backs the
// mirror-age field on the status endpoint; the in-memory table remains the
// source of truth for the session.
type PriceMirror interface {
	SetTable(ctx context.Context, table PriceTable, ts time.Time) error
	GetPrice(ctx context.Context, symbol string) (float64, time.Time, error)
	Age(ctx context.Context) (time.Duration, error)
}

// Bus channels published by the core and bridged to WebSocket clients.
const (
	ChannelPrices  = "prices"
	ChannelSession = "session"
	ChannelToasts  = "toasts"
)

// SignalBus provides pub/sub messaging between the core and the
// presentation-facing WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter limits how often a key may perform an action within a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
