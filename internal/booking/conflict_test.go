package booking

import (
	"testing"
	"time"

	"carrent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingBooking(id int64, start, end time.Time) models.Booking {
	return models.Booking{ID: id, CarID: 1, Start: start, End: end}
}

func TestFindConflict_NoExisting(t *testing.T) {
	conflict := FindConflict(date(2024, 2, 1), date(2024, 2, 10), nil, 0)
	assert.Nil(t, conflict)
}

func TestFindConflict_Disjoint(t *testing.T) {
	existing := []models.Booking{
		existingBooking(1, date(2024, 2, 1), date(2024, 2, 10)),
	}

	assert.Nil(t, FindConflict(date(2024, 1, 1), date(2024, 1, 31), existing, 0))
	assert.Nil(t, FindConflict(date(2024, 2, 11), date(2024, 2, 20), existing, 0))
}

func TestFindConflict_EndsInside(t *testing.T) {
	existing := []models.Booking{
		existingBooking(1, date(2024, 2, 1), date(2024, 2, 10)),
	}

	conflict := FindConflict(date(2024, 1, 20), date(2024, 2, 5), existing, 0)
	require.NotNil(t, conflict)
	assert.Equal(t, CaseEndsInside, conflict.Case)
	assert.Equal(t, int64(1), conflict.BookingID)
}

func TestFindConflict_StartsInside(t *testing.T) {
	existing := []models.Booking{
		existingBooking(1, date(2024, 2, 1), date(2024, 2, 10)),
	}

	// Starts during the existing booking, ends after it.
	conflict := FindConflict(date(2024, 2, 5), date(2024, 2, 20), existing, 0)
	require.NotNil(t, conflict)
	assert.Equal(t, CaseStartsInside, conflict.Case)
}

func TestFindConflict_Contains(t *testing.T) {
	existing := []models.Booking{
		existingBooking(1, date(2024, 3, 1), date(2024, 3, 5)),
	}

	conflict := FindConflict(date(2024, 2, 1), date(2024, 3, 20), existing, 0)
	require.NotNil(t, conflict)
	assert.Equal(t, CaseContains, conflict.Case)
}

func TestFindConflict_InsideExisting(t *testing.T) {
	// Candidate fully inside an existing booking matches the end check first.
	existing := []models.Booking{
		existingBooking(1, date(2024, 2, 1), date(2024, 2, 28)),
	}

	conflict := FindConflict(date(2024, 2, 10), date(2024, 2, 15), existing, 0)
	require.NotNil(t, conflict)
	assert.Equal(t, CaseEndsInside, conflict.Case)
}

func TestFindConflict_SharedBoundaryDay(t *testing.T) {
	existing := []models.Booking{
		existingBooking(1, date(2024, 2, 1), date(2024, 2, 10)),
	}

	// Starting on the existing booking's last day is a conflict: bounds are
	// inclusive.
	conflict := FindConflict(date(2024, 2, 10), date(2024, 2, 15), existing, 0)
	require.NotNil(t, conflict)
	assert.Equal(t, CaseStartsInside, conflict.Case)
}

func TestFindConflict_CaseOrderDeterministic(t *testing.T) {
	// Two overlapping bookings match different cases; the earliest-declared
	// case wins regardless of row order.
	startsInside := existingBooking(1, date(2024, 2, 8), date(2024, 2, 20))
	endsInside := existingBooking(2, date(2024, 1, 25), date(2024, 2, 3))

	for _, existing := range [][]models.Booking{
		{startsInside, endsInside},
		{endsInside, startsInside},
	} {
		conflict := FindConflict(date(2024, 2, 1), date(2024, 2, 10), existing, 0)
		require.NotNil(t, conflict)
		assert.Equal(t, CaseEndsInside, conflict.Case)
		assert.Equal(t, int64(2), conflict.BookingID)
	}
}

func TestFindConflict_SelfExclusion(t *testing.T) {
	existing := []models.Booking{
		existingBooking(7, date(2024, 2, 1), date(2024, 2, 10)),
	}

	// Updating booking 7 with its own unchanged interval is not a conflict.
	assert.Nil(t, FindConflict(date(2024, 2, 1), date(2024, 2, 10), existing, 7))

	// But only booking 7's row is excluded; another booking still conflicts.
	existing = append(existing, existingBooking(8, date(2024, 2, 12), date(2024, 2, 15)))
	conflict := FindConflict(date(2024, 2, 1), date(2024, 2, 14), existing, 7)
	require.NotNil(t, conflict)
	assert.Equal(t, int64(8), conflict.BookingID)
}

func TestFindConflict_PairwiseInvariant(t *testing.T) {
	// Bookings accepted one after another never overlap pairwise.
	var stored []models.Booking
	candidates := []struct {
		start, end time.Time
	}{
		{date(2024, 5, 1), date(2024, 5, 5)},
		{date(2024, 5, 6), date(2024, 5, 10)},
		{date(2024, 5, 3), date(2024, 5, 8)}, // rejected
		{date(2024, 5, 11), date(2024, 5, 11)},
		{date(2024, 4, 25), date(2024, 5, 20)}, // rejected
	}

	var nextID int64 = 1
	for _, c := range candidates {
		if FindConflict(c.start, c.end, stored, 0) == nil {
			stored = append(stored, existingBooking(nextID, c.start, c.end))
			nextID++
		}
	}

	require.Len(t, stored, 3)
	for i := range stored {
		for j := range stored {
			if i == j {
				continue
			}
			assert.False(t, stored[i].OverlapsWith(&stored[j]),
				"stored bookings %d and %d overlap", stored[i].ID, stored[j].ID)
		}
	}
}
