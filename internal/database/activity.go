package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nailbot/internal/models"
)

// InsertActivity пишет действие в журнал. Timestamp сохраняется в том поясе, в котором пришел.
func (db *DB) InsertActivity(ctx context.Context, ev *models.ActivityEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO activity_log (user_id, username, action, details, timestamp, chat_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.UserID, ev.Username, ev.Action, ev.Details, formatTimestamp(ev.Timestamp), ev.ChatID)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// GetDailyStats статистика за день day (локальная дата салона, 2006-01-02).
func (db *DB) GetDailyStats(ctx context.Context, day string, topLimit int) (*models.DailyStats, error) {
	stats := &models.DailyStats{Day: day}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id), COUNT(*) FROM activity_log WHERE substr(timestamp, 1, 10) = ?`,
		day).Scan(&stats.UniqueUsers, &stats.TotalActions)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT action, COUNT(*) AS cnt FROM activity_log
		 WHERE substr(timestamp, 1, 10) = ?
		 GROUP BY action ORDER BY cnt DESC, action ASC LIMIT ?`,
		day, topLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ac models.ActionCount
		var action sql.NullString
		if err := rows.Scan(&action, &ac.Count); err != nil {
			return nil, fmt.Errorf("failed to scan action count: %w", err)
		}
		ac.Action = action.String
		stats.TopActions = append(stats.TopActions, ac)
	}
	return stats, rows.Err()
}

// GetUserActions последние действия пользователя, новые первыми.
func (db *DB) GetUserActions(ctx context.Context, userID int64, limit int) ([]*models.ActivityEvent, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, username, action, details, timestamp, chat_id
		 FROM activity_log WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user actions: %w", err)
	}
	defer rows.Close()

	var events []*models.ActivityEvent
	for rows.Next() {
		var (
			ev                        models.ActivityEvent
			username, action, details sql.NullString
			timestamp                 sql.NullString
			chatID                    sql.NullInt64
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &username, &action, &details, &timestamp, &chatID); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		ev.Username = username.String
		ev.Action = action.String
		ev.Details = details.String
		ev.Timestamp = parseTimestamp(timestamp)
		ev.ChatID = chatID.Int64
		events = append(events, &ev)
	}
	return events, rows.Err()
}
