package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokendesk/swapd/internal/domain"
)

// fakeFeed scripts the feed status for handler tests.
type fakeFeed struct {
	status    domain.FeedStatus
	refreshed bool
}

func (f *fakeFeed) Status() domain.FeedStatus { return f.status }
func (f *fakeFeed) Refresh(_ context.Context) { f.refreshed = true }

// fakeMirror holds a fixed snapshot.
type fakeMirror struct {
	prices map[string]float64
	ts     time.Time
	age    time.Duration
}

func (m *fakeMirror) SetTable(context.Context, domain.PriceTable, time.Time) error { return nil }

func (m *fakeMirror) GetPrice(_ context.Context, symbol string) (float64, time.Time, error) {
	p, ok := m.prices[symbol]
	if !ok {
		return 0, time.Time{}, domain.ErrNotFound
	}
	return p, m.ts, nil
}

func (m *fakeMirror) Age(context.Context) (time.Duration, error) {
	return m.age, nil
}

func newStatusHandler(feed FeedController, mirror domain.PriceMirror) *StatusHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStatusHandler(feed, mirror, logger)
}

func TestGetStatusWithoutMirror(t *testing.T) {
	h := newStatusHandler(&fakeFeed{status: domain.FeedStatus{Loading: true}}, nil)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp, "feed")
	require.NotContains(t, resp, "mirror_age_seconds")
	require.NotContains(t, resp, "mirror_price")
}

func TestGetStatusMirrorPriceLookup(t *testing.T) {
	ts := time.Now().UTC().Truncate(time.Second)
	mirror := &fakeMirror{
		prices: map[string]float64{"ETH": 2000},
		ts:     ts,
		age:    42 * time.Second,
	}
	h := newStatusHandler(&fakeFeed{}, mirror)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status?symbol=ETH", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		MirrorAge   int64 `json:"mirror_age_seconds"`
		MirrorPrice struct {
			Symbol    string    `json:"symbol"`
			Price     float64   `json:"price"`
			UpdatedAt time.Time `json:"updated_at"`
		} `json:"mirror_price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(42), resp.MirrorAge)
	require.Equal(t, "ETH", resp.MirrorPrice.Symbol)
	require.Equal(t, 2000.0, resp.MirrorPrice.Price)
	require.True(t, ts.Equal(resp.MirrorPrice.UpdatedAt))
}

func TestGetStatusMirrorPriceUnknownSymbol(t *testing.T) {
	mirror := &fakeMirror{prices: map[string]float64{"ETH": 2000}}
	h := newStatusHandler(&fakeFeed{}, mirror)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status?symbol=DOGE", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotContains(t, resp, "mirror_price")
}

func TestRefreshAccepted(t *testing.T) {
	feed := &fakeFeed{}
	h := newStatusHandler(feed, nil)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/prices/refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, feed.refreshed)
}
