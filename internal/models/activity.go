package models

import "time"

const (
	ActionStart            = "start"
	ActionPrice            = "price"
	ActionAddress          = "address"
	ActionMyID             = "myid"
	ActionBookingStart     = "booking_start"
	ActionServiceSelected  = "service_selected"
	ActionBookingSubmitted = "booking_submitted"
	ActionBookingCancelled = "booking_cancelled"
	ActionBookingConfirmed = "booking_confirmed"
	ActionBookingRejected  = "booking_rejected"
	ActionQuestionStart    = "question_start"
	ActionQuestionSent     = "question_sent"
	ActionCancel           = "cancel"
)

type ActivityEvent struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	ChatID    int64     `json:"chat_id"`
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}

type DailyStats struct {
	Day          string        `json:"day"` // 2006-01-02
	UniqueUsers  int           `json:"unique_users"`
	TotalActions int           `json:"total_actions"`
	TopActions   []ActionCount `json:"top_actions"`
}
