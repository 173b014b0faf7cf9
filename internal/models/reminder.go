package models

import "time"

const (
	ReminderKindDayBefore = "day_before"
	ReminderKindSoon      = "soon"
)

// Reminder одноразовое напоминание. Текст и адресат фиксируются при постановке.
type Reminder struct {
	BookingID int64     `json:"booking_id"`
	ChatID    int64     `json:"chat_id"`
	Kind      string    `json:"kind"`
	FireAt    time.Time `json:"fire_at"`
	Text      string    `json:"text"`
}
