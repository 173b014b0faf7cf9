package database

import (
	"context"
	"testing"
	"time"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestBooking(userID int64) *models.Booking {
	return &models.Booking{
		UserID:      userID,
		ChatID:      userID,
		Username:    "client",
		Service:     "Маникюр",
		Price:       "1000",
		DurationMin: 60,
		DateText:    "05.01.2026",
		TimeText:    "16:00",
		Phone:       "+79990001122",
		Name:        "Анна",
		Comment:     models.CommentNone,
		Status:      models.StatusPending,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := newTestBooking(10)
	require.NoError(t, db.CreateBooking(ctx, b))
	assert.NotZero(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Service, got.Service)
	assert.Equal(t, b.Price, got.Price)
	assert.Equal(t, b.DurationMin, got.DurationMin)
	assert.Equal(t, b.DateText, got.DateText)
	assert.Equal(t, b.TimeText, got.TimeText)
	assert.Equal(t, b.Phone, got.Phone)
	assert.Equal(t, "client", got.Username)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.WithinDuration(t, b.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestCreateBooking_IDsAreUnique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		b := newTestBooking(int64(i))
		require.NoError(t, db.CreateBooking(ctx, b))
		assert.False(t, seen[b.ID])
		seen[b.ID] = true
	}
}

func TestCreateBooking_RejectsNonPending(t *testing.T) {
	db := setupTestDB(t)

	b := newTestBooking(1)
	b.Status = models.StatusConfirmed
	err := db.CreateBooking(context.Background(), b)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateBookingStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to confirmed", func(t *testing.T) {
		db := setupTestDB(t)
		b := newTestBooking(1)
		require.NoError(t, db.CreateBooking(ctx, b))

		require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusConfirmed))

		got, err := db.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, got.Status)
		assert.Equal(t, b.Phone, got.Phone)
	})

	t.Run("resolved booking is final", func(t *testing.T) {
		db := setupTestDB(t)
		b := newTestBooking(1)
		require.NoError(t, db.CreateBooking(ctx, b))
		require.NoError(t, db.UpdateBookingStatus(ctx, b.ID, models.StatusCancelled))

		err := db.UpdateBookingStatus(ctx, b.ID, models.StatusConfirmed)
		assert.ErrorIs(t, err, ErrStatusTransition)

		got, err := db.GetBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, got.Status)
	})

	t.Run("missing booking", func(t *testing.T) {
		db := setupTestDB(t)
		err := db.UpdateBookingStatus(ctx, 99, models.StatusConfirmed)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("back to pending is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		b := newTestBooking(1)
		require.NoError(t, db.CreateBooking(ctx, b))

		err := db.UpdateBookingStatus(ctx, b.ID, models.StatusPending)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestListAndUserBookings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, userID := range []int64{1, 2, 1} {
		require.NoError(t, db.CreateBooking(ctx, newTestBooking(userID)))
	}

	now := time.Now()
	all, err := db.ListBookings(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := db.ListBookings(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := db.GetUserBookings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Greater(t, mine[0].ID, mine[1].ID)

	require.NoError(t, db.UpdateBookingStatus(ctx, mine[0].ID, models.StatusConfirmed))
	counts, err := db.CountBookingsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.StatusPending])
	assert.Equal(t, 1, counts[models.StatusConfirmed])
}
