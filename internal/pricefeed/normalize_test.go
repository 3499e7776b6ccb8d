package pricefeed

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokendesk/swapd/internal/domain"
)

func TestBuildPriceTableDropsInvalidObservations(t *testing.T) {
	now := time.Now()
	obs := []domain.PriceObservation{
		{Currency: "", Price: 100, Date: now},
		{Currency: "ZERO", Price: 0, Date: now},
		{Currency: "NEG", Price: -5, Date: now},
		{Currency: "NAN", Price: math.NaN(), Date: now},
		{Currency: "INF", Price: math.Inf(1), Date: now},
		{Currency: "ETH", Price: 1645.9, Date: now},
	}

	table, err := BuildPriceTable(obs, now)
	require.NoError(t, err)
	require.Len(t, table, 1)
	require.Equal(t, 1645.9, table["ETH"])
}

func TestBuildPriceTableLatestDateWins(t *testing.T) {
	earlier := time.Date(2023, 8, 29, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)

	table, err := BuildPriceTable([]domain.PriceObservation{
		{Currency: "ETH", Price: 2000, Date: earlier},
		{Currency: "ETH", Price: 2100, Date: later},
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2100.0, table["ETH"])

	// Same outcome regardless of observation order.
	table, err = BuildPriceTable([]domain.PriceObservation{
		{Currency: "ETH", Price: 2100, Date: later},
		{Currency: "ETH", Price: 2000, Date: earlier},
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2100.0, table["ETH"])
}

func TestBuildPriceTableEqualDatesKeepFirstSeen(t *testing.T) {
	ts := time.Date(2023, 8, 29, 9, 0, 0, 0, time.UTC)

	table, err := BuildPriceTable([]domain.PriceObservation{
		{Currency: "USDC", Price: 0.9998, Date: ts},
		{Currency: "USDC", Price: 1.0002, Date: ts},
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, 0.9998, table["USDC"])
}

func TestBuildPriceTableMissingDateDefaultsToNow(t *testing.T) {
	now := time.Date(2023, 8, 29, 12, 0, 0, 0, time.UTC)
	dated := now.Add(-time.Hour)

	// The undated observation gets the fetch time, which is later than the
	// dated one, so it wins.
	table, err := BuildPriceTable([]domain.PriceObservation{
		{Currency: "ATOM", Price: 7.1, Date: dated},
		{Currency: "ATOM", Price: 7.2},
	}, now)
	require.NoError(t, err)
	require.Equal(t, 7.2, table["ATOM"])
}

func TestBuildPriceTableNoValidTokens(t *testing.T) {
	_, err := BuildPriceTable([]domain.PriceObservation{
		{Currency: "", Price: 1},
		{Currency: "X", Price: -1},
	}, time.Now())
	require.ErrorIs(t, err, domain.ErrNoValidTokens)

	_, err = BuildPriceTable(nil, time.Now())
	require.ErrorIs(t, err, domain.ErrNoValidTokens)
}

func TestPriceTableTokensSorted(t *testing.T) {
	table := domain.PriceTable{"ETH": 1645.9, "ATOM": 7.18, "USDC": 1.0}

	tokens := table.Tokens()
	require.Len(t, tokens, 3)
	require.Equal(t, "ATOM", tokens[0].Symbol)
	require.Equal(t, "ETH", tokens[1].Symbol)
	require.Equal(t, "USDC", tokens[2].Symbol)
}
