package notify

import (
	"sync"
	"testing"

	"roomdesk/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier_CartEvents(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	notifier := NewTelegramNotifier(sender, []int64{100, 200}, &logger)

	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	require.NoError(t, bus.PublishJSON(events.EventCartSubmitted, events.CartEventPayload{
		SessionID:  "s1",
		CustomerID: 7,
		GroupCount: 3,
		Accepted:   3,
	}))

	// One message per admin chat.
	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(100), sender.sent[0].ChatID)
	assert.Equal(t, int64(200), sender.sent[1].ChatID)
	assert.Contains(t, sender.sent[0].Text, "3")

	sender.sent = nil
	require.NoError(t, bus.PublishJSON(events.EventCartPartialFailure, events.CartEventPayload{
		CustomerID: 7,
		GroupCount: 3,
		Failed:     1,
	}))
	require.Len(t, sender.sent, 2)
}

func TestTelegramNotifier_StatusEvent(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	notifier := NewTelegramNotifier(sender, []int64{100}, &logger)

	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	require.NoError(t, bus.PublishJSON(events.EventBookingStatusChanged, events.StatusEventPayload{
		BookingID: 42,
		Status:    "Approved",
	}))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "42")
	assert.Contains(t, sender.sent[0].Text, "Approved")
}
