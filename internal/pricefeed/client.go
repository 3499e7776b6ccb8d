// Package pricefeed fetches raw price observations from the remote feed and
// normalizes them into a price table keyed by token symbol.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/tokendesk/swapd/internal/domain"
)

// maxBodySize caps how much of the feed response is read. The real feed is a
// few kilobytes; anything beyond this is malformed.
const maxBodySize = 4 << 20

// Client is the REST client for the price observation feed.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a feed client for the given endpoint. timeout bounds a
// single fetch attempt; on expiry the attempt is cancelled and reported as
// domain.ErrFetchTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		// The per-attempt deadline comes from the request context, so the
		// client itself carries no timeout.
		httpClient: &http.Client{},
	}
}

// apiObservation is the wire shape of one feed record. Date stays a string
// here because the feed mixes full RFC 3339 timestamps with bare dates.
type apiObservation struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
}

// FetchObservations performs one GET of the feed and decodes the body into
// raw observations. The body must be a JSON array; any other shape fails with
// domain.ErrInvalidFormat. Individual records that cannot be decoded are
// returned with their zero value so normalization drops them, matching the
// feed's lenient per-record handling.
func (c *Client) FetchObservations(ctx context.Context) ([]domain.PriceObservation, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("pricefeed: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("pricefeed: %w", domain.ErrFetchTimeout)
		case errors.Is(err, context.Canceled):
			return nil, fmt.Errorf("pricefeed: %w", domain.ErrFetchAborted)
		}
		return nil, fmt.Errorf("pricefeed: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("pricefeed: %w", domain.ErrFetchTimeout)
		}
		return nil, fmt.Errorf("pricefeed: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pricefeed: %w: status %d", domain.ErrFetchHTTP, resp.StatusCode)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("pricefeed: %w: %v", domain.ErrInvalidFormat, err)
	}

	obs := make([]domain.PriceObservation, 0, len(raw))
	for _, msg := range raw {
		var rec apiObservation
		if err := json.Unmarshal(msg, &rec); err != nil {
			// Record-level garbage is skipped, not fatal.
			obs = append(obs, domain.PriceObservation{})
			continue
		}
		obs = append(obs, domain.PriceObservation{
			Currency: rec.Currency,
			Price:    rec.Price,
			Date:     parseObservationDate(rec.Date),
		})
	}

	return obs, nil
}

// URL returns the configured feed endpoint.
func (c *Client) URL() string {
	return c.url
}

// observationDateLayouts are the timestamp formats the feed has been seen to
// emit. A bare date parses to midnight UTC.
var observationDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// parseObservationDate parses a feed timestamp. Missing or unparseable values
// yield the zero time, which normalization replaces with fetch-time now.
func parseObservationDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range observationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// validPrice reports whether p is a usable price: positive and finite.
func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
