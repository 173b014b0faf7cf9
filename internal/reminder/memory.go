package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
)

const deliveryTimeout = 30 * time.Second

var ErrSchedulerStopped = errors.New("reminder scheduler stopped")

// MemoryScheduler держит таймеры в процессе. После рестарта напоминания теряются.
type MemoryScheduler struct {
	sender Sender
	logger *zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	seq     uint64
	stopped bool
	wg      sync.WaitGroup
}

func NewMemoryScheduler(sender Sender, logger *zerolog.Logger) *MemoryScheduler {
	return &MemoryScheduler{
		sender: sender,
		logger: logger,
		now:    time.Now,
		timers: make(map[uint64]*time.Timer),
	}
}

func (s *MemoryScheduler) ScheduleOnce(_ context.Context, r models.Reminder) error {
	if err := validate(r); err != nil {
		return err
	}

	delay := r.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSchedulerStopped
	}

	s.seq++
	id := s.seq
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(id, r) })
	return nil
}

// Pending число еще не сработавших таймеров.
func (s *MemoryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop отменяет несработавшие таймеры и ждет текущие отправки.
func (s *MemoryScheduler) Stop() int {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0
	}
	s.stopped = true
	dropped := 0
	for id, t := range s.timers {
		if t.Stop() {
			dropped++
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	if dropped > 0 {
		s.logger.Warn().Int("dropped", dropped).Msg("Несработавшие напоминания отменены")
	}
	return dropped
}

func (s *MemoryScheduler) fire(id uint64, r models.Reminder) {
	s.mu.Lock()
	if _, ok := s.timers[id]; !ok || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	deliver(ctx, s.sender, r, s.logger)
}

func validate(r models.Reminder) error {
	if r.ChatID == 0 {
		return fmt.Errorf("reminder for booking %d: empty chat id", r.BookingID)
	}
	if r.Text == "" {
		return fmt.Errorf("reminder for booking %d: empty text", r.BookingID)
	}
	return nil
}

// deliver отправляет напоминание один раз, без повторов.
func deliver(ctx context.Context, sender Sender, r models.Reminder, logger *zerolog.Logger) error {
	if err := sender.SendText(ctx, r.ChatID, r.Text); err != nil {
		logger.Warn().
			Err(err).
			Int64("booking_id", r.BookingID).
			Int64("chat_id", r.ChatID).
			Str("kind", r.Kind).
			Msg("Не удалось отправить напоминание")
		return err
	}
	logger.Info().
		Int64("booking_id", r.BookingID).
		Str("kind", r.Kind).
		Msg("Напоминание отправлено")
	return nil
}
