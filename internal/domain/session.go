package domain

// Side identifies which half of the swap pair an operation targets.
type Side string

const (
	SideFrom Side = "from"
	SideTo   Side = "to"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideFrom || s == SideTo
}

// Opposite returns the other side of the pair.
func (s Side) Opposite() Side {
	if s == SideFrom {
		return SideTo
	}
	return SideFrom
}

// SessionView is the read-only snapshot of the swap session that the
// presentation layer renders. All derived fields (rate, converted amount, USD
// values) are recomputed by the controller whenever their inputs change.
type SessionView struct {
	FromToken    string   `json:"from_token"`
	ToToken      string   `json:"to_token"`
	FromAmount   string   `json:"from_amount"`
	ToAmount     string   `json:"to_amount"`
	ExchangeRate *float64 `json:"exchange_rate,omitempty"`
	FromUSD      string   `json:"from_usd,omitempty"`
	ToUSD        string   `json:"to_usd,omitempty"`
	AmountError  string   `json:"amount_error,omitempty"`
	Submitting   bool     `json:"submitting"`
}
