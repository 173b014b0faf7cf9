package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivered struct {
	ChatID int64
	Text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []delivered
	err  error
	ch   chan delivered
}

func newFakeSender() *fakeSender {
	return &fakeSender{ch: make(chan delivered, 16)}
}

func (s *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	d := delivered{ChatID: chatID, Text: text}
	s.mu.Lock()
	s.sent = append(s.sent, d)
	s.mu.Unlock()
	s.ch <- d
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type recordingScheduler struct {
	got []models.Reminder
	err error
}

func (s *recordingScheduler) ScheduleOnce(_ context.Context, r models.Reminder) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, r)
	return nil
}

func salonLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Yekaterinburg")
	require.NoError(t, err)
	return loc
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:       5,
		ChatID:   77,
		Service:  "Маникюр",
		DateText: "05.01.2026",
		TimeText: "16:00",
		Status:   models.StatusConfirmed,
	}
}

func TestPlanner_Plan(t *testing.T) {
	loc := salonLocation(t)
	logger := zerolog.Nop()
	p := NewPlanner(&recordingScheduler{}, loc, "Дагестанская 10/1", &logger)

	at, err := p.AppointmentTime("05.01.2026", "16:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 16, 0, 0, 0, loc), at)
	assert.Equal(t, time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC), at.UTC())

	reminders, err := p.Plan(testBooking())
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	day := reminders[0]
	assert.Equal(t, models.ReminderKindDayBefore, day.Kind)
	assert.Equal(t, int64(5), day.BookingID)
	assert.Equal(t, int64(77), day.ChatID)
	assert.True(t, day.FireAt.Equal(time.Date(2026, 1, 4, 16, 0, 0, 0, loc)))
	assert.Equal(t, "Напоминание: завтра запись Маникюр в 16:00. Адрес: Дагестанская 10/1.", day.Text)

	soon := reminders[1]
	assert.Equal(t, models.ReminderKindSoon, soon.Kind)
	assert.True(t, soon.FireAt.Equal(time.Date(2026, 1, 5, 14, 0, 0, 0, loc)))
	assert.Equal(t, "Напоминание: через 2 часа запись Маникюр в 16:00. Адрес: Дагестанская 10/1.", soon.Text)
}

func TestPlanner_PlanInvalidTimestamp(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPlanner(&recordingScheduler{}, nil, "addr", &logger)

	b := testBooking()
	b.DateText = "завтра"
	_, err := p.Plan(b)
	assert.Error(t, err)

	b = testBooking()
	b.TimeText = "24:30"
	_, err = p.Plan(b)
	assert.Error(t, err)
}

func TestPlanner_Schedule(t *testing.T) {
	logger := zerolog.Nop()
	sched := &recordingScheduler{}
	p := NewPlanner(sched, salonLocation(t), "addr", &logger)

	got, err := p.Schedule(context.Background(), testBooking())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, got, sched.got)
}

func TestPlanner_ScheduleErrors(t *testing.T) {
	logger := zerolog.Nop()

	sched := &recordingScheduler{err: errors.New("queue down")}
	p := NewPlanner(sched, nil, "addr", &logger)
	got, err := p.Schedule(context.Background(), testBooking())
	assert.ErrorContains(t, err, "queue down")
	assert.Empty(t, got)

	b := testBooking()
	b.DateText = "31.02.2026"
	_, err = NewPlanner(&recordingScheduler{}, nil, "addr", &logger).Schedule(context.Background(), b)
	assert.Error(t, err)
}

func TestMemoryScheduler_PastDueFiresImmediately(t *testing.T) {
	logger := zerolog.Nop()
	sender := newFakeSender()
	s := NewMemoryScheduler(sender, &logger)
	defer s.Stop()

	err := s.ScheduleOnce(context.Background(), models.Reminder{
		BookingID: 1,
		ChatID:    10,
		FireAt:    time.Now().Add(-time.Hour),
		Text:      "напоминание",
	})
	require.NoError(t, err)

	select {
	case d := <-sender.ch:
		assert.Equal(t, delivered{ChatID: 10, Text: "напоминание"}, d)
	case <-time.After(2 * time.Second):
		t.Fatal("past-due reminder was not delivered")
	}
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryScheduler_FiresAtFireTime(t *testing.T) {
	logger := zerolog.Nop()
	sender := newFakeSender()
	s := NewMemoryScheduler(sender, &logger)
	defer s.Stop()

	base := time.Now()
	s.now = func() time.Time { return base }

	require.NoError(t, s.ScheduleOnce(context.Background(), models.Reminder{
		ChatID: 10,
		FireAt: base.Add(50 * time.Millisecond),
		Text:   "скоро",
	}))
	assert.Equal(t, 1, s.Pending())

	select {
	case d := <-sender.ch:
		assert.Equal(t, "скоро", d.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was not delivered")
	}
}

func TestMemoryScheduler_Stop(t *testing.T) {
	logger := zerolog.Nop()
	sender := newFakeSender()
	s := NewMemoryScheduler(sender, &logger)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.ScheduleOnce(context.Background(), models.Reminder{
			ChatID: 10,
			FireAt: time.Now().Add(time.Hour),
			Text:   "потом",
		}))
	}
	assert.Equal(t, 3, s.Pending())

	assert.Equal(t, 3, s.Stop())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 0, s.Stop())

	err := s.ScheduleOnce(context.Background(), models.Reminder{ChatID: 1, Text: "x"})
	assert.ErrorIs(t, err, ErrSchedulerStopped)
	assert.Zero(t, sender.count())
}

func TestMemoryScheduler_InvalidReminder(t *testing.T) {
	logger := zerolog.Nop()
	s := NewMemoryScheduler(newFakeSender(), &logger)
	defer s.Stop()

	assert.Error(t, s.ScheduleOnce(context.Background(), models.Reminder{Text: "x"}))
	assert.Error(t, s.ScheduleOnce(context.Background(), models.Reminder{ChatID: 1}))
	assert.Equal(t, 0, s.Pending())
}

func TestMemoryScheduler_DeliveryFailureNotRetried(t *testing.T) {
	logger := zerolog.Nop()
	sender := newFakeSender()
	sender.err = errors.New("blocked")
	s := NewMemoryScheduler(sender, &logger)

	require.NoError(t, s.ScheduleOnce(context.Background(), models.Reminder{
		ChatID: 10,
		FireAt: time.Now(),
		Text:   "x",
	}))
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.Zero(t, sender.count())
}
