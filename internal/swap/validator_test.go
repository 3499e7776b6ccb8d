package swap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokendesk/swapd/internal/domain"
)

func TestAcceptableInput(t *testing.T) {
	accepted := []string{"", "0", "123", "1.5", "0.00001", ".", ".5", "123."}
	for _, in := range accepted {
		require.True(t, AcceptableInput(in), "input %q", in)
	}

	rejected := []string{"-1", "1.2.3", "1e5", "abc", "1,5", " 1", "1 "}
	for _, in := range rejected {
		require.False(t, AcceptableInput(in), "input %q", in)
	}
}

func TestValidateAmount(t *testing.T) {
	const max = 1e15

	require.NoError(t, ValidateAmount("", max))
	require.NoError(t, ValidateAmount("5", max))
	require.NoError(t, ValidateAmount("0.00001", max))
	require.NoError(t, ValidateAmount("0", max))

	require.ErrorIs(t, ValidateAmount("abc", max), domain.ErrNotANumber)
	require.ErrorIs(t, ValidateAmount("-1", max), domain.ErrMustBePositive)
	require.ErrorIs(t, ValidateAmount("1e16", max), domain.ErrTooLarge)
}

func TestDisplayMessage(t *testing.T) {
	require.Equal(t, "", DisplayMessage(nil))
	require.Equal(t, "Please enter a valid number", DisplayMessage(domain.ErrNotANumber))
	require.Equal(t, "Amount must be positive", DisplayMessage(domain.ErrMustBePositive))
	require.Equal(t, "Amount too large", DisplayMessage(domain.ErrTooLarge))
	require.Equal(t, "Please enter a valid amount", DisplayMessage(domain.ErrEmptyAmount))
}
