package bot

import (
	"context"
	"fmt"

	"nailbot/internal/events"
	"nailbot/internal/models"
)

// RegisterEventHandlers подписывает бот на события заявок: счетчики метрик
// и записи в журнал активности.
func (b *Bot) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, b.onBookingEvent(models.ActionBookingSubmitted))
	bus.Subscribe(events.EventBookingConfirmed, b.onBookingEvent(models.ActionBookingConfirmed))
	bus.Subscribe(events.EventBookingCancelled, b.onBookingEvent(models.ActionBookingRejected))
}

func (b *Bot) onBookingEvent(action string) events.EventHandler {
	return func(event *events.Event) error {
		p, err := events.DecodeBookingPayload(event)
		if err != nil {
			return err
		}

		if b.metrics != nil {
			b.metrics.BookingsTotal.WithLabelValues(p.Status).Inc()
		}

		details := fmt.Sprintf("#%d %s, %s %s", p.BookingID, p.Service, p.DateText, p.TimeText)
		if p.ActorID != 0 && p.ActorID != p.UserID {
			details += fmt.Sprintf(" (admin %d)", p.ActorID)
		}

		b.record(context.Background(), models.Requester{
			UserID:   p.UserID,
			ChatID:   p.ChatID,
			Username: p.Username,
		}, action, details)
		return nil
	}
}
