package models

import "time"

type Step string

const (
	StepSelectService Step = "select_service"
	StepEnterDate     Step = "enter_date"
	StepEnterTime     Step = "enter_time"
	StepEnterPhone    Step = "enter_phone"
	StepEnterName     Step = "enter_name"
	StepEnterComment  Step = "enter_comment"
	StepConfirm       Step = "confirm"
	StepAskQuestion   Step = "ask_question"
)

// Draft черновик заявки, который заполняется по шагам диалога.
type Draft struct {
	ServiceIndex int    `json:"service_index"`
	Service      string `json:"service"`
	Price        string `json:"price"`
	DurationMin  int    `json:"duration_min"`
	DateText     string `json:"date_text"`
	TimeText     string `json:"time_text"`
	Phone        string `json:"phone"`
	Name         string `json:"name"`
	Comment      string `json:"comment"`
}

type Session struct {
	UserID    int64     `json:"user_id"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(userID int64, step Step) *Session {
	return &Session{UserID: userID, Step: step, UpdatedAt: time.Now()}
}

func (s *Session) Advance(step Step) {
	s.Step = step
	s.UpdatedAt = time.Now()
}
