package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokendesk/swapd/internal/domain"
)

const (
	// tableKey holds the latest price table as a hash of symbol -> price.
	tableKey = "swapd:prices"
	// tableTSKey holds the Unix-nanosecond completion time of the fetch that
	// produced the current table.
	tableTSKey = "swapd:prices:ts"
)

// PriceMirror implements domain.PriceMirror on a Redis hash. The mirror is a
// TTL'd copy of the in-memory table for the status endpoint and any sidecar
// consumers; it is rewritten wholesale after every successful fetch and is
// never the source of truth.
type PriceMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceMirror creates a PriceMirror backed by the given Client. ttl bounds
// how long a mirrored table survives without a refresh; zero means no expiry.
func NewPriceMirror(c *Client, ttl time.Duration) *PriceMirror {
	return &PriceMirror{rdb: c.Underlying(), ttl: ttl}
}

// SetTable replaces the mirrored table and records the fetch completion time.
func (m *PriceMirror) SetTable(ctx context.Context, table domain.PriceTable, ts time.Time) error {
	fields := make(map[string]interface{}, len(table))
	for symbol, price := range table {
		fields[symbol] = strconv.FormatFloat(price, 'f', -1, 64)
	}

	pipe := m.rdb.TxPipeline()
	pipe.Del(ctx, tableKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, tableKey, fields)
	}
	pipe.Set(ctx, tableTSKey, strconv.FormatInt(ts.UnixNano(), 10), m.ttl)
	if m.ttl > 0 {
		pipe.Expire(ctx, tableKey, m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: mirror table: %w", err)
	}
	return nil
}

// GetPrice retrieves one mirrored price together with the table's fetch time.
// It returns domain.ErrNotFound when the symbol is absent or the mirror has
// expired.
func (m *PriceMirror) GetPrice(ctx context.Context, symbol string) (float64, time.Time, error) {
	val, err := m.rdb.HGet(ctx, tableKey, symbol).Result()
	if err == redis.Nil {
		return 0, time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: mirror get %s: %w", symbol, err)
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis: mirror parse %s: %w", symbol, err)
	}

	ts, err := m.tableTime(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	return price, ts, nil
}

// Age returns how old the mirrored table is. It returns domain.ErrNotFound
// when no table has been mirrored or the mirror has expired.
func (m *PriceMirror) Age(ctx context.Context) (time.Duration, error) {
	ts, err := m.tableTime(ctx)
	if err != nil {
		return 0, err
	}
	return time.Since(ts), nil
}

func (m *PriceMirror) tableTime(ctx context.Context) (time.Time, error) {
	val, err := m.rdb.Get(ctx, tableTSKey).Result()
	if err == redis.Nil {
		return time.Time{}, domain.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis: mirror timestamp: %w", err)
	}
	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("redis: mirror parse timestamp: %w", err)
	}
	return time.Unix(0, nanos), nil
}

// Compile-time interface check.
var _ domain.PriceMirror = (*PriceMirror)(nil)
