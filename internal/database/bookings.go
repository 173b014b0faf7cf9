package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nailbot/internal/models"
)

const bookingColumns = `id, user_id, chat_id, username, service, price, duration_min,
	date_text, time_text, phone, name, comment, status, created_at`

// CreateBooking сохраняет новую заявку. Создать можно только заявку в статусе pending.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	if booking.Status != models.StatusPending {
		return fmt.Errorf("%w: new booking must be pending, got %q", ErrInvalidStatus, booking.Status)
	}

	query := `INSERT INTO bookings (
				user_id, chat_id, username, service, price, duration_min,
				date_text, time_text, phone, name, comment, status, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		booking.UserID,
		booking.ChatID,
		booking.Username,
		booking.Service,
		booking.Price,
		booking.DurationMin,
		booking.DateText,
		booking.TimeText,
		booking.Phone,
		booking.Name,
		booking.Comment,
		booking.Status,
		formatTimestamp(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now

	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return booking, nil
}

// UpdateBookingStatus переводит pending заявку в confirmed или cancelled одним UPDATE.
// Из двух одновременных решений проходит только первое.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	if status != models.StatusConfirmed && status != models.StatusCancelled {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		status, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 1 {
		return nil
	}

	var current string
	err = db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read booking status: %w", err)
	}
	return fmt.Errorf("%w: booking %d is %s", ErrStatusTransition, id, current)
}

// ListBookings заявки, созданные в полуинтервале [from, to).
func (db *DB) ListBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE created_at >= ? AND created_at < ?
		ORDER BY id`
	rows, err := db.QueryContext(ctx, query, formatTimestamp(from.UTC()), formatTimestamp(to.UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY id DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// CountBookingsByStatus количество заявок по статусам.
func (db *DB) CountBookingsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status sql.NullString
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status.String] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                        models.Booking
		userID, chatID, duration sql.NullInt64
		username, service, price sql.NullString
		dateText, timeText       sql.NullString
		phone, name, comment     sql.NullString
		status, createdAt        sql.NullString
	)
	err := row.Scan(&b.ID, &userID, &chatID, &username, &service, &price, &duration,
		&dateText, &timeText, &phone, &name, &comment, &status, &createdAt)
	if err != nil {
		return nil, err
	}

	b.UserID = userID.Int64
	b.ChatID = chatID.Int64
	b.Username = username.String
	b.Service = service.String
	b.Price = price.String
	b.DurationMin = int(duration.Int64)
	b.DateText = dateText.String
	b.TimeText = timeText.String
	b.Phone = phone.String
	b.Name = name.String
	b.Comment = comment.String
	b.Status = status.String
	b.CreatedAt = parseTimestamp(createdAt)
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
