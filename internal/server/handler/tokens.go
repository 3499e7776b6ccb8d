package handler

import (
	"log/slog"
	"net/http"

	"github.com/tokendesk/swapd/internal/domain"
)

// TokenLister defines the methods the token handler requires from the swap
// controller.
type TokenLister interface {
	Tokens() []domain.Token
	AvailableTokens(side domain.Side) []domain.Token
}

// TokensHandler serves the token picker listings.
type TokensHandler struct {
	tokens TokenLister
	logger *slog.Logger
}

// NewTokensHandler creates a TokensHandler with the given lister.
func NewTokensHandler(tokens TokenLister, logger *slog.Logger) *TokensHandler {
	return &TokensHandler{
		tokens: tokens,
		logger: logger,
	}
}

// ListTokens returns the priced tokens. With a side query parameter the list
// is filtered for that side's picker, excluding the token selected on the
// opposite side.
// GET /api/tokens?side=from|to
func (h *TokensHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	var tokens []domain.Token
	if raw := r.URL.Query().Get("side"); raw != "" {
		side := domain.Side(raw)
		if !side.Valid() {
			writeError(w, http.StatusBadRequest, "side must be \"from\" or \"to\"")
			return
		}
		tokens = h.tokens.AvailableTokens(side)
	} else {
		tokens = h.tokens.Tokens()
	}

	if tokens == nil {
		tokens = []domain.Token{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": tokens,
		"count":  len(tokens),
	})
}
