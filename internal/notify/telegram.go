package notify

import (
	"encoding/json"
	"fmt"

	"roomdesk/internal/domain"
	"roomdesk/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier pings admin chats when carts are submitted or bookings
// change status. Delivery is best effort.
type TelegramNotifier struct {
	sender  domain.TelegramSender
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, chatIDs []int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender:  sender,
		chatIDs: chatIDs,
		logger:  logger,
	}
}

// Subscribe wires the notifier onto the event bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventCartSubmitted, n.onCartEvent)
	bus.Subscribe(events.EventCartPartialFailure, n.onCartEvent)
	bus.Subscribe(events.EventBookingStatusChanged, n.onStatusEvent)
}

func (n *TelegramNotifier) onCartEvent(event *events.Event) error {
	var payload events.CartEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	var text string
	switch event.Type {
	case events.EventCartSubmitted:
		text = fmt.Sprintf("📝 Новая заявка: клиент %d отправил %d групп(ы) на рассмотрение.",
			payload.CustomerID, payload.GroupCount)
	case events.EventCartPartialFailure:
		text = fmt.Sprintf("⚠️ Заявка клиента %d: %d из %d групп с конфликтами.",
			payload.CustomerID, payload.Failed, payload.GroupCount)
	default:
		return nil
	}

	n.broadcast(text)
	return nil
}

func (n *TelegramNotifier) onStatusEvent(event *events.Event) error {
	var payload events.StatusEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	n.broadcast(fmt.Sprintf("Бронирование %d: статус изменен на %s.", payload.BookingID, payload.Status))
	return nil
}

func (n *TelegramNotifier) broadcast(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram notify failed")
		}
	}
}
