package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nailbot/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEventPayload снимок заявки для подписчиков.
type BookingEventPayload struct {
	BookingID int64  `json:"booking_id"`
	UserID    int64  `json:"user_id"`
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	Service   string `json:"service"`
	Status    string `json:"status"`
	DateText  string `json:"date_text"`
	TimeText  string `json:"time_text"`
	ActorID   int64  `json:"actor_id,omitempty"`
}

func NewBookingPayload(b *models.Booking, actorID int64) BookingEventPayload {
	return BookingEventPayload{
		BookingID: b.ID,
		UserID:    b.UserID,
		ChatID:    b.ChatID,
		Username:  b.Username,
		Service:   b.Service,
		Status:    b.Status,
		DateText:  b.DateText,
		TimeText:  b.TimeText,
		ActorID:   actorID,
	}
}

// DecodeBookingPayload разбирает payload события о заявке.
func DecodeBookingPayload(event *Event) (BookingEventPayload, error) {
	var p BookingEventPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return p, nil
}

type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

type EventHandler func(event *Event) error

// EventBus синхронный pub/sub внутри процесса.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	onError     func(event *Event, err error)
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError задает обработчик ошибок подписчиков. По умолчанию ошибки игнорируются.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
