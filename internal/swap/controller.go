package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tokendesk/swapd/internal/domain"
	"github.com/tokendesk/swapd/internal/pricefeed"
)

// feedFailureMessage is the single message all fetch failures collapse to.
// The concrete cause stays in the structured log and the status endpoint.
const feedFailureMessage = "Failed to load prices. Please try again."

// staleConfirmPrompt is shown before submitting against outdated rates.
const staleConfirmPrompt = "Exchange rates may be outdated. Continue anyway?"

// Feed fetches raw price observations. Implemented by pricefeed.Client.
type Feed interface {
	FetchObservations(ctx context.Context) ([]domain.PriceObservation, error)
}

// Toaster receives notification events for the toast/alert collaborators.
// Implemented by notify.Notifier.
type Toaster interface {
	Notify(ctx context.Context, event, kind, title, message string) error
}

// Confirmer answers a blocking yes/no question before a risky action
// proceeds. The presentation layer supplies one per submit attempt.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Config holds the controller's timing and bounds parameters.
type Config struct {
	// Debounce is the quiet period after the last accepted keystroke before
	// the derived amount is recomputed. Zero recomputes immediately.
	Debounce time.Duration
	// SubmitDelay is the fixed duration of the simulated submission. It has
	// no cancellation path; once submitting, it runs to completion.
	SubmitDelay time.Duration
	// StaleAfter is the age of the last successful fetch beyond which the
	// displayed rates count as outdated.
	StaleAfter time.Duration
	// MaxAmount bounds input validation.
	MaxAmount float64
	// DisplayPrecision is the number of decimals for rate display.
	DisplayPrecision int
}

// Controller owns the swap session: the normalized price table, the selected
// pair, the typed amount and its derived output, and the feed status. HTTP
// handlers are the only mutators; every entry point takes the state mutex, so
// no two flows touch the session concurrently.
type Controller struct {
	cfg    Config
	feed   Feed
	mirror domain.PriceMirror
	bus    domain.SignalBus
	toasts Toaster
	logger *slog.Logger

	mu            sync.Mutex
	prices        domain.PriceTable
	tokens        []domain.Token
	loading       bool
	lastUpdatedAt time.Time
	lastErr       string

	fromToken       string
	toToken         string
	fromAmount      string // raw input, updated on every accepted keystroke
	debouncedAmount string // lags fromAmount by the debounce window
	toAmount        string
	rate            float64
	haveRate        bool
	amountErr       error
	submitting      bool

	// fetchGen tags each fetch attempt; results carrying a stale generation
	// are discarded so a superseded fetch can never be observed.
	fetchGen    uint64
	cancelFetch context.CancelFunc

	debounceTimer *time.Timer
}

// NewController creates a session controller. mirror, bus, and toasts may all
// be nil; the corresponding side effects are skipped.
func NewController(cfg Config, feed Feed, mirror domain.PriceMirror, bus domain.SignalBus, toasts Toaster, logger *slog.Logger) *Controller {
	return &Controller{
		cfg:    cfg,
		feed:   feed,
		mirror: mirror,
		bus:    bus,
		toasts: toasts,
		logger: logger.With(slog.String("component", "swap_controller")),
	}
}

// ---------------------------------------------------------------------------
// Price feed orchestration
// ---------------------------------------------------------------------------

// Refresh starts a price fetch. A new call cancels and supersedes any
// in-flight fetch; only the newest attempt's result is ever applied. The
// fetch outlives the triggering request.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.fetchGen++
	gen := c.fetchGen
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	// Detach from the caller: a retry triggered by an HTTP request must not
	// die when that request's context does.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelFetch = cancel
	c.loading = true
	c.mu.Unlock()

	c.publishStatus(fetchCtx)

	go c.runFetch(fetchCtx, gen)
}

// runFetch performs one fetch attempt and applies its result if the attempt
// is still the newest one.
func (c *Controller) runFetch(ctx context.Context, gen uint64) {
	start := time.Now()
	obs, err := c.feed.FetchObservations(ctx)

	var table domain.PriceTable
	if err == nil {
		table, err = pricefeed.BuildPriceTable(obs, time.Now())
	}

	c.mu.Lock()
	if gen != c.fetchGen {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch result",
			slog.Uint64("generation", gen),
		)
		return
	}
	c.loading = false
	c.cancelFetch = nil

	if err != nil {
		// Every failure clears the table and surfaces one generic message.
		c.prices = nil
		c.tokens = nil
		c.lastErr = feedFailureMessage
		c.recomputeLocked()
		c.mu.Unlock()

		c.logger.Error("price fetch failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		c.publishStatus(context.Background())
		c.notify(context.Background(), "prices_failed", "error", "Price feed", feedFailureMessage)
		return
	}

	now := time.Now()
	c.prices = table
	c.tokens = table.Tokens()
	c.lastUpdatedAt = now
	c.lastErr = ""
	c.applyDefaultSelectionLocked()
	c.recomputeLocked()
	tokenCount := len(c.tokens)
	c.mu.Unlock()

	c.logger.Info("price table updated",
		slog.Int("tokens", tokenCount),
		slog.Duration("elapsed", time.Since(start)),
	)

	if c.mirror != nil {
		if merr := c.mirror.SetTable(context.Background(), table, now); merr != nil {
			c.logger.Warn("price mirror update failed", slog.String("error", merr.Error()))
		}
	}

	c.publishStatus(context.Background())
	c.publishSession(context.Background())
	c.notify(context.Background(), "prices_loaded", "success", "Price feed",
		fmt.Sprintf("Loaded prices for %d tokens", tokenCount))
}

// applyDefaultSelectionLocked picks the first two sorted symbols once at
// least two tokens are known, and only when neither side has been chosen.
func (c *Controller) applyDefaultSelectionLocked() {
	if len(c.tokens) < 2 || c.fromToken != "" || c.toToken != "" {
		return
	}
	c.fromToken = c.tokens[0].Symbol
	c.toToken = c.tokens[1].Symbol
}

// ---------------------------------------------------------------------------
// Session mutations
// ---------------------------------------------------------------------------

// SetAmount handles an amount keystroke. Input that fails the decimal pattern
// is ignored entirely: the field does not update and no error is shown.
// Accepted input updates the raw field and validation immediately; the
// derived output recomputes only after the debounce window of inactivity.
func (c *Controller) SetAmount(ctx context.Context, text string) bool {
	if !AcceptableInput(text) {
		return false
	}

	c.mu.Lock()
	c.fromAmount = text
	c.amountErr = ValidateAmount(text, c.cfg.MaxAmount)

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	if c.cfg.Debounce <= 0 {
		c.debouncedAmount = text
		c.recomputeLocked()
		c.mu.Unlock()
		c.publishSession(ctx)
		return true
	}
	c.debounceTimer = time.AfterFunc(c.cfg.Debounce, func() {
		c.applyDebounced(text)
	})
	c.mu.Unlock()

	c.publishSession(ctx)
	return true
}

// applyDebounced commits a debounced amount. A timer that lost the race to a
// newer keystroke finds the raw field changed and gives up.
func (c *Controller) applyDebounced(text string) {
	c.mu.Lock()
	if c.fromAmount != text {
		c.mu.Unlock()
		return
	}
	c.debouncedAmount = text
	c.recomputeLocked()
	c.mu.Unlock()

	c.publishSession(context.Background())
}

// SelectToken chooses a token for one side of the pair. The symbol must be
// known and must not already be selected on the opposite side.
func (c *Controller) SelectToken(ctx context.Context, side domain.Side, symbol string) error {
	if !side.Valid() {
		return fmt.Errorf("swap: unknown side %q", side)
	}

	c.mu.Lock()
	if _, ok := c.prices[symbol]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("swap: select %s: %w", symbol, domain.ErrNotFound)
	}
	opposite := c.toToken
	if side == domain.SideTo {
		opposite = c.fromToken
	}
	if symbol == opposite {
		c.mu.Unlock()
		return fmt.Errorf("swap: select %s: %w", symbol, domain.ErrSameToken)
	}
	if side == domain.SideFrom {
		c.fromToken = symbol
	} else {
		c.toToken = symbol
	}
	c.recomputeLocked()
	c.mu.Unlock()

	c.publishSession(ctx)
	return nil
}

// SwapSides exchanges the from and to tokens in place. Amounts follow from
// the rate recomputation, not from separate logic.
func (c *Controller) SwapSides(ctx context.Context) {
	c.mu.Lock()
	c.fromToken, c.toToken = c.toToken, c.fromToken
	c.recomputeLocked()
	c.mu.Unlock()

	c.publishSession(ctx)
}

// Submit runs the submission flow. It blocks for the simulated processing
// delay on success; there is no cancellation once submitting and no failure
// outcome for the simulated step. confirm is consulted only when the prices
// are stale.
func (c *Controller) Submit(ctx context.Context, confirm Confirmer) error {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return domain.ErrSubmitting
	}

	amount, parseErr := strconv.ParseFloat(c.fromAmount, 64)
	if c.fromAmount == "" || parseErr != nil || amount <= 0 {
		c.amountErr = domain.ErrEmptyAmount
		c.mu.Unlock()
		c.publishSession(ctx)
		return domain.ErrEmptyAmount
	}
	if c.amountErr != nil {
		c.mu.Unlock()
		return domain.ErrHasValidationError
	}
	if c.fromToken == "" || c.toToken == "" {
		c.mu.Unlock()
		return domain.ErrNoTokenSelected
	}
	stale := c.staleLocked()
	// Claim the submission before dropping the lock for the confirm step, so
	// a concurrent Submit sees ErrSubmitting instead of racing past the guard
	// while the confirmer blocks.
	c.submitting = true
	c.mu.Unlock()

	if stale {
		if confirm == nil || !confirm.Confirm(ctx, staleConfirmPrompt) {
			c.mu.Lock()
			c.submitting = false
			c.mu.Unlock()
			return domain.ErrStaleDeclined
		}
	}

	c.mu.Lock()
	fromAmount, fromToken, toToken := c.fromAmount, c.fromToken, c.toToken
	toAmount, rate := c.toAmount, c.rate
	c.mu.Unlock()
	c.publishSession(ctx)

	// Fixed-duration simulated processing; deliberately not tied to ctx.
	time.Sleep(c.cfg.SubmitDelay)

	c.mu.Lock()
	c.submitting = false
	c.fromAmount = ""
	c.debouncedAmount = ""
	c.toAmount = ""
	c.amountErr = nil
	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
		c.debounceTimer = nil
	}
	c.mu.Unlock()
	c.publishSession(ctx)

	message := fmt.Sprintf("Swapped %s %s for %s %s (1 %s = %s %s). This is a demo; no actual swap occurred.",
		fromAmount, fromToken, toAmount, toToken,
		fromToken, FormatRate(rate, c.cfg.DisplayPrecision), toToken)
	c.notify(ctx, "swap_submitted", "success", "Swap complete", message)

	c.logger.Info("swap submitted",
		slog.String("from_token", fromToken),
		slog.String("to_token", toToken),
		slog.String("from_amount", fromAmount),
		slog.String("to_amount", toAmount),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Read-only views
// ---------------------------------------------------------------------------

// Tokens returns the full sorted token list.
func (c *Controller) Tokens() []domain.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// AvailableTokens returns the selector list for one side, excluding the
// symbol chosen on the opposite side so the same token can never be picked
// twice.
func (c *Controller) AvailableTokens(side domain.Side) []domain.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	exclude := c.toToken
	if side == domain.SideTo {
		exclude = c.fromToken
	}
	out := make([]domain.Token, 0, len(c.tokens))
	for _, t := range c.tokens {
		if t.Symbol != exclude {
			out = append(out, t)
		}
	}
	return out
}

// Session returns a snapshot of the session for rendering.
func (c *Controller) Session() domain.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

func (c *Controller) sessionLocked() domain.SessionView {
	view := domain.SessionView{
		FromToken:   c.fromToken,
		ToToken:     c.toToken,
		FromAmount:  c.fromAmount,
		ToAmount:    c.toAmount,
		AmountError: DisplayMessage(c.amountErr),
		Submitting:  c.submitting,
	}
	if c.haveRate {
		rate := c.rate
		view.ExchangeRate = &rate
	}
	if c.fromToken != "" {
		view.FromUSD = USDValue(c.fromAmount, c.prices[c.fromToken])
	}
	if c.toToken != "" {
		view.ToUSD = USDValue(c.toAmount, c.prices[c.toToken])
	}
	return view
}

// Status returns the feed status. Staleness is derived on read from the last
// successful fetch time against the configured threshold.
func (c *Controller) Status() domain.FeedStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() domain.FeedStatus {
	status := domain.FeedStatus{
		Loading:   c.loading,
		LastError: c.lastErr,
		Stale:     c.staleLocked(),
	}
	if !c.lastUpdatedAt.IsZero() {
		t := c.lastUpdatedAt
		status.LastUpdatedAt = &t
	}
	return status
}

func (c *Controller) staleLocked() bool {
	if c.lastUpdatedAt.IsZero() {
		return false
	}
	return time.Since(c.lastUpdatedAt) > c.cfg.StaleAfter
}

// recomputeLocked re-derives the exchange rate and converted amount from the
// current pair and the debounced input. Called whenever any declared input
// changes; there is no implicit reactivity.
func (c *Controller) recomputeLocked() {
	c.rate, c.haveRate = ExchangeRate(c.prices[c.fromToken], c.prices[c.toToken])
	c.toAmount = ConvertedAmount(c.debouncedAmount, c.rate, c.haveRate)
}

// ---------------------------------------------------------------------------
// Event publication
// ---------------------------------------------------------------------------

// publishSession pushes the current session view to the session channel.
func (c *Controller) publishSession(ctx context.Context) {
	if c.bus == nil {
		return
	}
	c.mu.Lock()
	view := c.sessionLocked()
	c.mu.Unlock()

	c.publish(ctx, domain.ChannelSession, "session", view)
}

// publishStatus pushes the feed status and token list to the prices channel.
func (c *Controller) publishStatus(ctx context.Context) {
	if c.bus == nil {
		return
	}
	c.mu.Lock()
	payload := struct {
		Status domain.FeedStatus `json:"status"`
		Tokens []domain.Token    `json:"tokens"`
	}{c.statusLocked(), append([]domain.Token(nil), c.tokens...)}
	c.mu.Unlock()

	c.publish(ctx, domain.ChannelPrices, "prices", payload)
}

func (c *Controller) publish(ctx context.Context, channel, msgType string, payload any) {
	data, err := json.Marshal(map[string]any{
		"type":    msgType,
		"payload": payload,
	})
	if err != nil {
		return
	}
	if err := c.bus.Publish(ctx, channel, data); err != nil {
		c.logger.Warn("bus publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) notify(ctx context.Context, event, kind, title, message string) {
	if c.toasts == nil {
		return
	}
	if err := c.toasts.Notify(ctx, event, kind, title, message); err != nil {
		c.logger.Warn("notify failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
