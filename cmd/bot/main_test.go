package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"nailbot/internal/config"
	"nailbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingActivityRepo struct {
	mu     sync.Mutex
	events []*models.ActivityEvent
}

func (r *recordingActivityRepo) InsertActivity(_ context.Context, ev *models.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingActivityRepo) GetDailyStats(_ context.Context, day string, _ int) (*models.DailyStats, error) {
	return &models.DailyStats{Day: day}, nil
}

func (r *recordingActivityRepo) GetUserActions(context.Context, int64, int) ([]*models.ActivityEvent, error) {
	return nil, nil
}

func (r *recordingActivityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestInitActivity_WithoutMonitoring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := &recordingActivityRepo{}
	logger := zerolog.Nop()
	cfg := &config.Config{Monitoring: config.MonitoringConfig{DailyReportTime: "21:00"}}

	// initActivity сам запускает воркер и не блокирует
	notifier, err := initActivity(ctx, cfg, repo, time.UTC, &logger)
	require.NoError(t, err)
	require.NotNil(t, notifier)

	notifier.Record(ctx, models.ActivityEvent{UserID: 1, Action: models.ActionStart})
	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-notifier.Done():
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop after cancel")
	}
}
