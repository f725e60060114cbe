package database

import (
	"context"
	"database/sql"
	"fmt"

	"carrent/internal/booking"
	"carrent/internal/models"

	"github.com/shopspring/decimal"
)

const bookingColumns = `id, user_id, car_id, booking_start, booking_end,
	duration, total_price, created_at, updated_at`

// GetBooking returns a booking by id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

// ListBookingsByCar returns the bookings stored for a car, ordered by start
// date. When excludeID is non-zero that booking is left out, which the
// update pipeline uses for self-exclusion.
func (db *DB) ListBookingsByCar(ctx context.Context, carID, excludeID int64) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE car_id = ? AND (? = 0 OR id != ?)
		ORDER BY booking_start`,
		carID, excludeID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for car %d: %w", carID, err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListBookings returns every stored booking, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// ListBookingsByUser returns a user's bookings, newest first.
func (db *DB) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %d: %w", userID, err)
	}
	defer rows.Close()
	return collectBookings(rows)
}

// CreateBooking inserts a booking. The overlap check runs again inside the
// transaction against current rows, so two concurrent requests for the same
// car cannot both pass: transactions begin immediate and SQLite serializes
// writers, turning the race into a *booking.ConflictError for the loser.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkConflictTx(ctx, tx, b, 0); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (user_id, car_id, booking_start, booking_end,
		                      duration, total_price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CarID, b.Start, b.End,
		b.Duration, b.TotalPrice.StringFixed(2), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	b.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateBooking rewrites a booking's interval and derived fields, with the
// same transactional overlap re-check as CreateBooking (excluding the
// booking's own row).
func (db *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkConflictTx(ctx, tx, b, b.ID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings SET booking_start = ?, booking_end = ?, duration = ?,
		                    total_price = ?, updated_at = ?
		WHERE id = ?`,
		b.Start, b.End, b.Duration, b.TotalPrice.StringFixed(2), b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking %d: %w", b.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteBooking removes a booking.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// checkConflictTx re-runs the conflict detector against the rows visible to
// the transaction.
func checkConflictTx(ctx context.Context, tx *sql.Tx, b *models.Booking, excludeID int64) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE car_id = ? AND (? = 0 OR id != ?)
		ORDER BY booking_start`,
		b.CarID, excludeID, excludeID)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	defer rows.Close()

	existing, err := collectBookings(rows)
	if err != nil {
		return err
	}
	if conflict := booking.FindConflict(b.Start, b.End, existing, excludeID); conflict != nil {
		return conflict
	}
	return nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var totalPrice string
	err := row.Scan(
		&b.ID, &b.UserID, &b.CarID, &b.Start, &b.End,
		&b.Duration, &totalPrice, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.TotalPrice, err = decimal.NewFromString(totalPrice)
	if err != nil {
		return nil, fmt.Errorf("parse total_price %q: %w", totalPrice, err)
	}
	b.Start = models.NormalizeDate(b.Start)
	b.End = models.NormalizeDate(b.End)
	return &b, nil
}
