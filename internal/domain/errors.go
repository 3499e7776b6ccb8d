package domain

import "errors"

// Feed errors. The presentation layer collapses all of them into a single
// "failed to load prices" message; the concrete value is kept for logs and
// the status endpoint.
var (
	ErrFetchTimeout  = errors.New("price fetch timed out")
	ErrFetchAborted  = errors.New("price fetch superseded")
	ErrFetchHTTP     = errors.New("feed returned an error status")
	ErrInvalidFormat = errors.New("invalid feed response format")
	ErrNoValidTokens = errors.New("no valid tokens in feed")
)

// Validation errors for the amount input. These are inline and non-fatal:
// they block submission but no other interaction.
var (
	ErrNotANumber     = errors.New("please enter a valid number")
	ErrMustBePositive = errors.New("amount must be positive")
	ErrTooLarge       = errors.New("amount too large")
)

// Submit-blocked conditions. None of them transitions session state.
var (
	ErrEmptyAmount        = errors.New("please enter a valid amount")
	ErrHasValidationError = errors.New("amount has a validation error")
	ErrNoTokenSelected    = errors.New("no token selected")
	ErrStaleDeclined      = errors.New("stale prices not confirmed")
	ErrSubmitting         = errors.New("submission already in progress")
)

// ErrSameToken guards the selector contract: the filtered lists never offer
// the symbol chosen on the opposite side, so a direct API call asking for it
// is rejected.
var ErrSameToken = errors.New("token already selected on the other side")

// Infrastructure errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrRateLimited = errors.New("rate limited")
)
