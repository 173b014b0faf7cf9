// Package reminder ставит напоминания о визите после подтверждения заявки.
package reminder

import (
	"context"
	"fmt"
	"time"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

// Scheduler доставляет одно напоминание в момент FireAt.
// Если момент уже прошел, напоминание уходит сразу.
type Scheduler interface {
	ScheduleOnce(ctx context.Context, r models.Reminder) error
}

// Sender отправляет готовый текст в чат.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type Planner struct {
	scheduler Scheduler
	loc       *time.Location
	address   string
	logger    *zerolog.Logger
}

func NewPlanner(scheduler Scheduler, loc *time.Location, address string, logger *zerolog.Logger) *Planner {
	if loc == nil {
		loc = time.UTC
	}
	return &Planner{
		scheduler: scheduler,
		loc:       loc,
		address:   address,
		logger:    logger,
	}
}

// AppointmentTime разбирает дату и время визита в часовом поясе салона.
func (p *Planner) AppointmentTime(dateText, timeText string) (time.Time, error) {
	return models.AppointmentTime(dateText, timeText, p.loc)
}

// Plan считает напоминания за сутки и за два часа до визита.
func (p *Planner) Plan(b *models.Booking) ([]models.Reminder, error) {
	at, err := p.AppointmentTime(b.DateText, b.TimeText)
	if err != nil {
		return nil, fmt.Errorf("booking %d appointment time: %w", b.ID, err)
	}

	return []models.Reminder{
		{
			BookingID: b.ID,
			ChatID:    b.ChatID,
			Kind:      models.ReminderKindDayBefore,
			FireAt:    at.Add(-models.ReminderDayBefore),
			Text:      fmt.Sprintf("Напоминание: завтра запись %s в %s. Адрес: %s.", b.Service, b.TimeText, p.address),
		},
		{
			BookingID: b.ID,
			ChatID:    b.ChatID,
			Kind:      models.ReminderKindSoon,
			FireAt:    at.Add(-models.ReminderSoon),
			Text:      fmt.Sprintf("Напоминание: через 2 часа запись %s в %s. Адрес: %s.", b.Service, b.TimeText, p.address),
		},
	}, nil
}

// Schedule планирует напоминания и возвращает те, что удалось поставить.
func (p *Planner) Schedule(ctx context.Context, b *models.Booking) ([]models.Reminder, error) {
	reminders, err := p.Plan(b)
	if err != nil {
		return nil, err
	}

	for i, r := range reminders {
		if err := p.scheduler.ScheduleOnce(ctx, r); err != nil {
			return reminders[:i], fmt.Errorf("schedule %s reminder for booking %d: %w", r.Kind, r.BookingID, err)
		}
		p.logger.Info().
			Int64("booking_id", r.BookingID).
			Str("kind", r.Kind).
			Time("fire_at", r.FireAt).
			Msg("Напоминание поставлено")
	}
	return reminders, nil
}
