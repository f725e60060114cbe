package booking

import "time"

// ValidateInterval rejects malformed or past-dated booking intervals.
// today is injected so the check stays deterministic; it is compared at
// calendar-date granularity. A same-day interval (start == end) is valid.
func ValidateInterval(start, end, today time.Time) error {
	if start.Before(today) {
		return ErrPastStart
	}
	if end.Before(start) {
		return ErrInvertedInterval
	}
	return nil
}
