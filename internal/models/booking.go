package models

import (
	"strings"
	"time"
)

type Booking struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ChatID      int64     `json:"chat_id"`
	Username    string    `json:"username"`
	Service     string    `json:"service"`
	Price       string    `json:"price"`
	DurationMin int       `json:"duration_min"`
	DateText    string    `json:"date_text"`
	TimeText    string    `json:"time_text"`
	Phone       string    `json:"phone"`
	Name        string    `json:"name"`
	Comment     string    `json:"comment"`
	Status      string    `json:"status"` // pending, confirmed, cancelled
	CreatedAt   time.Time `json:"created_at"`
}

// Requester описывает пользователя Telegram, от имени которого пришло событие.
type Requester struct {
	UserID   int64  `json:"user_id"`
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Mention возвращает @username либо пустую строку.
func (r Requester) Mention() string {
	if r.Username == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(r.Username, "@")
}

// NewBooking собирает заявку из черновика. Статус всегда pending.
func NewBooking(r Requester, d Draft) *Booking {
	return &Booking{
		UserID:      r.UserID,
		ChatID:      r.ChatID,
		Username:    r.Username,
		Service:     d.Service,
		Price:       d.Price,
		DurationMin: d.DurationMin,
		DateText:    d.DateText,
		TimeText:    d.TimeText,
		Phone:       d.Phone,
		Name:        d.Name,
		Comment:     d.Comment,
		Status:      StatusPending,
	}
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Decision решение администратора по заявке.
type Decision struct {
	OriginChatID int64
	ActorID      int64
	BookingID    int64
	Accept       bool
}
