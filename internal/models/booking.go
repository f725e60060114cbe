package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// Booking represents a car rental reservation.
// Start and End are calendar dates normalized to midnight UTC; both
// boundaries are inclusive, so Start == End is a valid same-day booking.
type Booking struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	CarID      int64           `json:"car_id"`
	Start      time.Time       `json:"booking_start"`
	End        time.Time       `json:"booking_end"`
	Duration   int64           `json:"booking_duration"` // whole days, derived
	TotalPrice decimal.Decimal `json:"total_price"`      // derived
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DurationDays returns the booking length in whole calendar days.
func (b *Booking) DurationDays() int64 {
	return int64(b.End.Sub(b.Start).Hours() / 24)
}

// OverlapsWith checks if this booking overlaps with another booking.
// Boundaries are inclusive: bookings sharing a single day conflict.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return !b.End.Before(other.Start) && !other.End.Before(b.Start)
}

// ContainsDate checks if the booking covers a specific date.
func (b *Booking) ContainsDate(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(b.Start) && !d.After(b.End)
}

// NormalizeDate truncates a timestamp to midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
