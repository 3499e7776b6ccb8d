package pricefeed

import (
	"fmt"
	"time"

	"github.com/tokendesk/swapd/internal/domain"
)

// accepted tracks the winning observation for a symbol during normalization.
type accepted struct {
	price float64
	date  time.Time
}

// BuildPriceTable reduces a raw observation list to one price per symbol.
//
// Observations with an empty currency or a non-positive or non-finite price
// are dropped. A missing observation date defaults to now (fetch time). For
// each symbol the observation with the latest date wins; on an equal date the
// earlier-seen observation is kept, so an entry is replaced only by a strictly
// later one. If nothing survives, domain.ErrNoValidTokens is returned.
func BuildPriceTable(obs []domain.PriceObservation, now time.Time) (domain.PriceTable, error) {
	best := make(map[string]accepted, len(obs))

	for _, o := range obs {
		if o.Currency == "" {
			continue
		}
		if !validPrice(o.Price) {
			continue
		}

		date := o.Date
		if date.IsZero() {
			date = now
		}

		cur, ok := best[o.Currency]
		if !ok || date.After(cur.date) {
			best[o.Currency] = accepted{price: o.Price, date: date}
		}
	}

	if len(best) == 0 {
		return nil, fmt.Errorf("pricefeed: %w", domain.ErrNoValidTokens)
	}

	table := make(domain.PriceTable, len(best))
	for symbol, a := range best {
		table[symbol] = a.price
	}
	return table, nil
}
