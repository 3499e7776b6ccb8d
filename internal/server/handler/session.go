package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tokendesk/swapd/internal/domain"
	"github.com/tokendesk/swapd/internal/swap"
)

// SessionController defines the methods the session handler requires from the
// swap controller. It is declared locally so the handler package does not
// depend on the concrete implementation.
type SessionController interface {
	Session() domain.SessionView
	SetAmount(ctx context.Context, text string) bool
	SelectToken(ctx context.Context, side domain.Side, symbol string) error
	SwapSides(ctx context.Context)
	Submit(ctx context.Context, confirm swap.Confirmer) error
}

// SessionHandler serves the swap session endpoints: the state snapshot plus
// the amount / token / swap-sides / submit callbacks.
type SessionHandler struct {
	session SessionController
	logger  *slog.Logger
}

// NewSessionHandler creates a SessionHandler with the given controller.
func NewSessionHandler(session SessionController, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		session: session,
		logger:  logger,
	}
}

// GetSession returns the current session view.
// GET /api/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Session())
}

// amountRequest is the payload for SetAmount.
type amountRequest struct {
	Amount string `json:"amount"`
}

// SetAmount handles an amount change. Input that fails the decimal keystroke
// pattern is not an error: the field simply does not update, and the response
// flags the rejection so the client can keep its local echo in sync.
// PUT /api/session/amount
func (h *SessionHandler) SetAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted := h.session.SetAmount(r.Context(), req.Amount)
	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": accepted,
		"session":  h.session.Session(),
	})
}

// tokenRequest is the payload for SelectToken.
type tokenRequest struct {
	Side   string `json:"side"`
	Symbol string `json:"symbol"`
}

// SelectToken handles a token selection for one side of the pair.
// PUT /api/session/token
func (h *SessionHandler) SelectToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	side := domain.Side(req.Side)
	if !side.Valid() {
		writeError(w, http.StatusBadRequest, "side must be \"from\" or \"to\"")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}

	if err := h.session.SelectToken(r.Context(), side, req.Symbol); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown token")
		case errors.Is(err, domain.ErrSameToken):
			writeError(w, http.StatusConflict, "token already selected on the other side")
		default:
			h.logger.ErrorContext(r.Context(), "handler: select token failed",
				slog.String("symbol", req.Symbol),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to select token")
		}
		return
	}

	writeJSON(w, http.StatusOK, h.session.Session())
}

// SwapSides exchanges the from and to tokens.
// POST /api/session/swap
func (h *SessionHandler) SwapSides(w http.ResponseWriter, r *http.Request) {
	h.session.SwapSides(r.Context())
	writeJSON(w, http.StatusOK, h.session.Session())
}

// submitRequest is the payload for Submit. ConfirmStale answers the blocking
// stale-price confirmation for this attempt.
type submitRequest struct {
	ConfirmStale bool `json:"confirm_stale"`
}

// Submit runs the submission flow. The response blocks for the simulated
// processing delay on the success path.
// POST /api/session/submit
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	confirm := swap.ConfirmFunc(func(context.Context, string) bool {
		return req.ConfirmStale
	})

	err := h.session.Submit(r.Context(), confirm)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "submitted",
			"session": h.session.Session(),
		})
	case errors.Is(err, domain.ErrStaleDeclined):
		// The client shows its confirmation dialog and resubmits with
		// confirm_stale set.
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":              "exchange rates may be outdated",
			"needs_confirmation": true,
		})
	case errors.Is(err, domain.ErrSubmitting):
		writeError(w, http.StatusConflict, "submission already in progress")
	case errors.Is(err, domain.ErrEmptyAmount),
		errors.Is(err, domain.ErrHasValidationError),
		errors.Is(err, domain.ErrNoTokenSelected):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   swap.DisplayMessage(err),
			"session": h.session.Session(),
		})
	default:
		h.logger.ErrorContext(r.Context(), "handler: submit failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to submit swap")
	}
}
