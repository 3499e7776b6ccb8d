package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokendesk/swapd/internal/domain"
)

type recordingSender struct {
	name   string
	err    error
	events []Event
}

func (s *recordingSender) Send(_ context.Context, ev Event) error {
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSender) Name() string { return s.name }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifierFiltersByEventType(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{sender}, []string{"swap_submitted"}, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "prices_loaded", "success", "t", "m"))
	require.Empty(t, sender.events)

	require.NoError(t, n.Notify(context.Background(), "swap_submitted", "success", "Swap complete", "done"))
	require.Len(t, sender.events, 1)
	require.Equal(t, "swap_submitted", sender.events[0].Type)
	require.Equal(t, "success", sender.events[0].Kind)
	require.NotEmpty(t, sender.events[0].ID)
}

func TestNotifierEmptyFilterAllowsAll(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{sender}, nil, discardLogger())

	require.NoError(t, n.Notify(context.Background(), "anything", "info", "t", "m"))
	require.Len(t, sender.events, 1)
}

func TestNotifierCollectsSenderErrors(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("boom")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.Notify(context.Background(), "error", "error", "t", "m")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad: boom")

	// The failing sender did not block the healthy one.
	require.Len(t, good.events, 1)
}

// stubBus records published messages per channel.
type stubBus struct {
	channel string
	data    []byte
}

func (b *stubBus) Publish(_ context.Context, channel string, payload []byte) error {
	b.channel, b.data = channel, payload
	return nil
}

func (b *stubBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func TestBusSenderPublishesToast(t *testing.T) {
	bus := &stubBus{}
	sender := NewBusSender(bus)

	err := sender.Send(context.Background(), Event{
		ID:      "1",
		Type:    "prices_failed",
		Kind:    "error",
		Title:   "Price feed",
		Message: "Failed to load prices. Please try again.",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ChannelToasts, bus.channel)

	var envelope struct {
		Type    string `json:"type"`
		Payload Event  `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(bus.data, &envelope))
	require.Equal(t, "toast", envelope.Type)
	require.Equal(t, "prices_failed", envelope.Payload.Type)
}
