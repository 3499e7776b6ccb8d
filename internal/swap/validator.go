package swap

import (
	"math"
	"regexp"
	"strconv"

	"github.com/tokendesk/swapd/internal/domain"
)

// inputPattern is the keystroke gate for the amount field: an optional run of
// digits, at most one decimal point, and an optional fractional run. Anything
// else is ignored without an error; the field simply does not update.
var inputPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// AcceptableInput reports whether text may be written into the amount field.
func AcceptableInput(text string) bool {
	return inputPattern.MatchString(text)
}

// ValidateAmount checks a typed quantity for presentational errors. An empty
// string is valid (no error, not "ready to swap"; emptiness is enforced
// separately at submit time). max is the largest accepted amount.
func ValidateAmount(text string, max float64) error {
	if text == "" {
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) {
		return domain.ErrNotANumber
	}
	if n < 0 {
		return domain.ErrMustBePositive
	}
	if n > max {
		return domain.ErrTooLarge
	}
	return nil
}

// DisplayMessage maps a validation or submit error to the inline text shown
// next to the amount field.
func DisplayMessage(err error) string {
	switch err {
	case nil:
		return ""
	case domain.ErrNotANumber:
		return "Please enter a valid number"
	case domain.ErrMustBePositive:
		return "Amount must be positive"
	case domain.ErrTooLarge:
		return "Amount too large"
	case domain.ErrEmptyAmount:
		return "Please enter a valid amount"
	default:
		return err.Error()
	}
}
