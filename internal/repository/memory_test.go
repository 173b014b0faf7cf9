package repository

import (
	"context"
	"testing"
	"time"

	"nailbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	clock := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		session := &models.Session{UserID: 123, Step: models.StepEnterName, Draft: models.Draft{Phone: "+7999"}}
		require.NoError(t, repo.SetState(ctx, session))

		got, err := repo.GetState(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, session, got)

		// изменения копии не попадают в хранилище
		got.Step = models.StepConfirm
		again, _ := repo.GetState(ctx, 123)
		assert.Equal(t, models.StepEnterName, again.Step)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.Session{UserID: 321}))
		clock = clock.Add(2 * time.Hour)

		got, err := repo.GetState(ctx, 321)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.Session{UserID: 123}))
		require.NoError(t, repo.ClearState(ctx, 123))
		got, _ := repo.GetState(ctx, 123)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(456)
		allowed, _ := repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.False(t, allowed)

		clock = clock.Add(time.Second + time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, userID, 2, time.Second)
		assert.True(t, allowed)
	})
}
