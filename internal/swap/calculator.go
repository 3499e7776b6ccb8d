// Package swap implements the currency-swap form core: pure rate and amount
// arithmetic, input validation, and the session controller that orchestrates
// selection, debounced recomputation, and the simulated submission flow.
package swap

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ExchangeRate returns how many "to" units one "from" unit buys. ok is false
// when either price is absent, zero, or unusable; callers must not use rate
// in that case.
func ExchangeRate(fromPrice, toPrice float64) (rate float64, ok bool) {
	if !usablePrice(fromPrice) || !usablePrice(toPrice) {
		return 0, false
	}
	return toPrice / fromPrice, true
}

// ConvertedAmount derives the display string for the "to" side from the typed
// input and the exchange rate. The result is empty when no rate is available,
// the input is empty, or the input does not parse to a non-negative number.
func ConvertedAmount(inputText string, rate float64, haveRate bool) string {
	if !haveRate || inputText == "" {
		return ""
	}
	amount, err := strconv.ParseFloat(inputText, 64)
	if err != nil || math.IsNaN(amount) || amount < 0 {
		return ""
	}
	return FormatAmount(amount * rate)
}

// FormatAmount renders a token amount with tiered precision: zero is "0",
// values below 1e-6 use scientific notation with 4 fractional digits, values
// below 1 get up to 8 decimals, and everything else up to 6, with trailing
// zeros (and a dangling decimal point) stripped.
func FormatAmount(value float64) string {
	if value == 0 {
		return "0"
	}
	if value < 1e-6 {
		return strconv.FormatFloat(value, 'e', 4, 64)
	}
	if value < 1 {
		return stripTrailingZeros(strconv.FormatFloat(value, 'f', 8, 64))
	}
	return stripTrailingZeros(strconv.FormatFloat(value, 'f', 6, 64))
}

// USDValue renders the fiat value of amountText at the given unit price,
// fixed to two decimals. An empty or unparseable amount counts as zero.
func USDValue(amountText string, price float64) string {
	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		amount = 0
	}
	return fmt.Sprintf("%.2f", amount*price)
}

// FormatRate renders an exchange rate with the configured display precision.
func FormatRate(rate float64, precision int) string {
	return strconv.FormatFloat(rate, 'f', precision, 64)
}

// stripTrailingZeros removes trailing fractional zeros, and the decimal point
// itself when nothing remains after it. The input always has a fractional
// part, so integer digits are never touched.
func stripTrailingZeros(s string) string {
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// usablePrice reports whether p can participate in a rate: positive, finite.
func usablePrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
