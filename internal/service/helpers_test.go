package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"nailbot/internal/database"
	"nailbot/internal/events"
	"nailbot/internal/models"
	"nailbot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testAdminChat = int64(1000)
	testAddress   = "Дагестанская 10/1"
)

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]models.Option
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sentMessage
	failChat map[int64]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failChat: make(map[int64]bool)}
}

func (m *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.SendChoice(ctx, chatID, text, nil)
}

func (m *fakeMessenger) SendChoice(_ context.Context, chatID int64, text string, rows [][]models.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failChat[chatID] {
		return errors.New("chat unavailable")
	}
	m.sent = append(m.sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (m *fakeMessenger) to(chatID int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (m *fakeMessenger) last(chatID int64) sentMessage {
	msgs := m.to(chatID)
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

func (m *fakeMessenger) contains(chatID int64, substr string) bool {
	for _, s := range m.to(chatID) {
		if strings.Contains(s.Text, substr) {
			return true
		}
	}
	return false
}

type fakeGate struct {
	mu       sync.Mutex
	requests []*models.Booking
	err      error
}

func (g *fakeGate) RequestDecision(_ context.Context, b *models.Booking) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, b)
	return g.err
}

type fakePlanner struct {
	mu        sync.Mutex
	scheduled []*models.Booking
	err       error
}

func (p *fakePlanner) Schedule(_ context.Context, b *models.Booking) ([]models.Reminder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.scheduled = append(p.scheduled, b)
	return []models.Reminder{{BookingID: b.ID}, {BookingID: b.ID}}, nil
}

func (p *fakePlanner) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scheduled)
}

type recordedEvents struct {
	mu    sync.Mutex
	types []string
}

func (r *recordedEvents) subscribe(bus *events.EventBus, types ...string) {
	for _, t := range types {
		bus.Subscribe(t, func(ev *events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.types = append(r.types, ev.Type)
			return nil
		})
	}
}

func (r *recordedEvents) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestState() *StateService {
	logger := zerolog.Nop()
	return NewStateService(repository.NewMemoryStateRepository(time.Hour), &logger)
}

func testRequester(userID int64) models.Requester {
	return models.Requester{UserID: userID, ChatID: userID, Username: "client", FullName: "Анна К"}
}
