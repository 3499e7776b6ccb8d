package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokendesk/swapd/internal/domain"
)

func TestFetchObservationsDecodesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"currency":"ETH","date":"2023-08-29T07:10:52.000Z","price":1645.93},
			{"currency":"USDC","date":"2023-08-29","price":1.0},
			{"currency":"ATOM","price":7.18},
			{"currency":123,"price":"bad"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	obs, err := client.FetchObservations(context.Background())
	require.NoError(t, err)
	require.Len(t, obs, 4)

	require.Equal(t, "ETH", obs[0].Currency)
	require.Equal(t, 1645.93, obs[0].Price)
	require.Equal(t, time.Date(2023, 8, 29, 7, 10, 52, 0, time.UTC), obs[0].Date.UTC())

	// Bare dates parse to midnight UTC.
	require.Equal(t, time.Date(2023, 8, 29, 0, 0, 0, 0, time.UTC), obs[1].Date.UTC())

	// A missing date stays zero so normalization substitutes the fetch time.
	require.True(t, obs[2].Date.IsZero())

	// A record that fails to decode becomes a zero observation, which
	// normalization drops.
	require.Equal(t, domain.PriceObservation{}, obs[3])
}

func TestFetchObservationsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchObservations(context.Background())
	require.ErrorIs(t, err, domain.ErrFetchHTTP)
}

func TestFetchObservationsInvalidFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchObservations(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidFormat)
}

func TestFetchObservationsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 30*time.Millisecond)
	_, err := client.FetchObservations(context.Background())
	require.ErrorIs(t, err, domain.ErrFetchTimeout)
}

func TestFetchObservationsAborted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := NewClient(srv.URL, time.Second)
	_, err := client.FetchObservations(ctx)
	require.ErrorIs(t, err, domain.ErrFetchAborted)
}

func TestParseObservationDate(t *testing.T) {
	require.True(t, parseObservationDate("").IsZero())
	require.True(t, parseObservationDate("yesterday").IsZero())

	got := parseObservationDate("2023-08-29T07:10:52.000Z")
	require.Equal(t, time.Date(2023, 8, 29, 7, 10, 52, 0, time.UTC), got.UTC())
}
