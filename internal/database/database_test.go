package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"nailbot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_MigratesLegacyBookings(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// таблица в том виде, в котором ее создавала прежняя версия бота
	legacy, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE bookings(
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER, chat_id INTEGER,
		service TEXT, price TEXT, duration_min INTEGER, date_text TEXT, time_text TEXT,
		phone TEXT, name TEXT, comment TEXT, status TEXT, created_at TEXT)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO bookings (user_id, chat_id, service, status, created_at)
		VALUES (1, 1, 'Маникюр', 'pending', '2026-01-05T16:00:00+05:00')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	logger := zerolog.Nop()
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "", got.Username)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 11, got.CreatedAt.UTC().Hour())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   sql.NullString
		want time.Time
	}{
		{"Current", sql.NullString{String: "2026-01-05T11:00:00.000000Z", Valid: true}, time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)},
		{"WithOffset", sql.NullString{String: "2026-01-05T16:00:00+05:00", Valid: true}, time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)},
		{"IsoformatNoZone", sql.NullString{String: "2026-01-05T11:00:00.123456", Valid: true}, time.Date(2026, 1, 5, 11, 0, 0, 123456000, time.UTC)},
		{"IsoformatNoFraction", sql.NullString{String: "2026-01-05T11:00:00", Valid: true}, time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)},
		{"SpaceSeparated", sql.NullString{String: "2026-01-05 11:00:00", Valid: true}, time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)},
		{"Garbage", sql.NullString{String: "вчера", Valid: true}, time.Time{}},
		{"Null", sql.NullString{}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.in)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestNewDB_LegacyZonelessCreatedAt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = legacy.Exec(`CREATE TABLE bookings(
		id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER, chat_id INTEGER,
		service TEXT, price TEXT, duration_min INTEGER, date_text TEXT, time_text TEXT,
		phone TEXT, name TEXT, comment TEXT, status TEXT, created_at TEXT)`)
	require.NoError(t, err)
	_, err = legacy.Exec(`INSERT INTO bookings (user_id, chat_id, service, status, created_at)
		VALUES (1, 1, 'Маникюр', 'pending', '2026-01-05T11:30:00.250000')`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	logger := zerolog.Nop()
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetBooking(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, time.Date(2026, 1, 5, 11, 30, 0, 250000000, time.UTC).Equal(got.CreatedAt))
}

func TestEnsureColumnIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.ensureColumn("bookings", "username", "TEXT NOT NULL DEFAULT ''"))
	require.NoError(t, db.migrate())
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close()

	ctx := context.Background()

	assert.Error(t, db.CreateBooking(ctx, newTestBooking(1)))
	_, err = db.GetBooking(ctx, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBookingNotFound)
	assert.Error(t, db.UpdateBookingStatus(ctx, 1, models.StatusConfirmed))
	assert.Error(t, db.InsertActivity(ctx, &models.ActivityEvent{UserID: 1}))
	_, err = db.GetDailyStats(ctx, "2026-01-05", 5)
	assert.Error(t, err)
}
