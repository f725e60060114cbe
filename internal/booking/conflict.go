package booking

import (
	"time"

	"carrent/internal/models"
)

// within reports a ≤ x ≤ b at date granularity (inclusive bounds).
func within(x, a, b time.Time) bool {
	return !x.Before(a) && !x.After(b)
}

// FindConflict checks the candidate interval against the existing bookings
// for a car and returns the first conflict found. The cases are evaluated in
// a fixed order across the whole set, so the diagnosis is reproducible even
// when several existing bookings overlap the candidate:
//
//  1. the candidate ends during an existing booking
//  2. the candidate starts during an existing booking
//  3. the candidate fully contains an existing booking
//
// The booking identified by excludeID is skipped, which lets an update
// overlap the booking's own prior interval. Only that one row is excluded;
// other bookings for the same car are still checked.
func FindConflict(start, end time.Time, existing []models.Booking, excludeID int64) *ConflictError {
	checks := []struct {
		c     ConflictCase
		match func(e *models.Booking) bool
	}{
		{CaseEndsInside, func(e *models.Booking) bool { return within(end, e.Start, e.End) }},
		{CaseStartsInside, func(e *models.Booking) bool { return within(start, e.Start, e.End) }},
		{CaseContains, func(e *models.Booking) bool { return !e.Start.Before(start) && !e.End.After(end) }},
	}

	for _, check := range checks {
		for i := range existing {
			e := &existing[i]
			if excludeID != 0 && e.ID == excludeID {
				continue
			}
			if check.match(e) {
				return &ConflictError{Case: check.c, BookingID: e.ID}
			}
		}
	}
	return nil
}
