package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrPastStart means the requested start date precedes today.
	ErrPastStart = errors.New("booking start date must not be in the past")
	// ErrInvertedInterval means the requested end date precedes the start date.
	ErrInvertedInterval = errors.New("booking end date must be greater than booking start date")
	// ErrCarNotFound means the referenced car does not exist.
	ErrCarNotFound = errors.New("car not found")
	// ErrNotFound means the referenced booking does not exist.
	ErrNotFound = errors.New("booking not found")
)

// ConflictCase identifies which overlap relationship caused a rejection.
type ConflictCase int

const (
	// CaseEndsInside means the requested booking ends during an existing one.
	CaseEndsInside ConflictCase = iota + 1
	// CaseStartsInside means the requested booking starts during an existing one.
	CaseStartsInside
	// CaseContains means the requested booking fully contains an existing one.
	CaseContains
)

func (c ConflictCase) String() string {
	switch c {
	case CaseEndsInside:
		return "ends_inside"
	case CaseStartsInside:
		return "starts_inside"
	case CaseContains:
		return "contains"
	}
	return "unknown"
}

// ConflictError reports an overlap with an existing booking for the same car.
type ConflictError struct {
	Case      ConflictCase
	BookingID int64 // the existing booking that caused the rejection
}

func (e *ConflictError) Error() string {
	switch e.Case {
	case CaseEndsInside:
		return "requested booking ends during an existing booking, select a sooner booking end date"
	case CaseStartsInside:
		return "requested booking starts during an existing booking, select a later booking start date"
	case CaseContains:
		return "requested booking period covers an existing booking"
	}
	return fmt.Sprintf("booking conflict (case %d)", e.Case)
}
