// Package domain defines the core data model for the swap form service:
// price observations from the feed, the normalized price table, token
// projections, and the session/feed state exposed to the presentation layer.
package domain

import (
	"sort"
	"time"
)

// PriceObservation is one raw price record from the feed for a single
// currency at a point in time. Observations are transient: they live for one
// fetch cycle and are discarded after normalization.
type PriceObservation struct {
	Currency string    `json:"currency"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

// PriceTable maps a token symbol to its latest valid price. A table is
// rebuilt wholesale on every fetch and never partially mutated; every price
// present is positive and finite.
type PriceTable map[string]float64

// Token is a view-friendly projection of one PriceTable entry.
type Token struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Tokens returns the table's entries as a slice sorted ascending by symbol,
// the order the selector widgets display.
func (t PriceTable) Tokens() []Token {
	tokens := make([]Token, 0, len(t))
	for symbol, price := range t {
		tokens = append(tokens, Token{Symbol: symbol, Price: price})
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Symbol < tokens[j].Symbol
	})
	return tokens
}

// FeedStatus describes the price feed's fetch state as exposed to the
// presentation layer. Stale is derived on read from LastUpdatedAt against the
// configured threshold; it is never stored.
type FeedStatus struct {
	Loading       bool       `json:"loading"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	Stale         bool       `json:"stale"`
}
