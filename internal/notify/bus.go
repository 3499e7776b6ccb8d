package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tokendesk/swapd/internal/domain"
)

// BusSender publishes events to the toast channel on the signal bus, where
// the WebSocket hub forwards them to connected clients for rendering.
type BusSender struct {
	bus domain.SignalBus
}

// NewBusSender creates a BusSender on the given bus.
func NewBusSender(bus domain.SignalBus) *BusSender {
	return &BusSender{bus: bus}
}

// Send marshals the event and publishes it to the toasts channel.
func (b *BusSender) Send(ctx context.Context, ev Event) error {
	data, err := json.Marshal(map[string]any{
		"type":    "toast",
		"payload": ev,
	})
	if err != nil {
		return fmt.Errorf("bus: marshal event: %w", err)
	}
	if err := b.bus.Publish(ctx, domain.ChannelToasts, data); err != nil {
		return fmt.Errorf("bus: publish event: %w", err)
	}
	return nil
}

// Name returns the sender identifier.
func (b *BusSender) Name() string {
	return "bus"
}
