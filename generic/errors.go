/*
errors.go - Centralized error types for the recurrence core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every error here is a caller-input domain error: it is raised
  synchronously at construction or call time and never retried
  internally. Nothing is clamped or silently corrected.

ERROR CATEGORIES:
  1. Calendar errors - Week index, weekday or month outside their domain
  2. Range errors    - Wrong reference frame, inverted span, degenerate step
  3. Store errors    - Persistence failures of materialized dates

USAGE:
  Callers branch on the sentinel, not on the message:

    if errors.Is(err, generic.ErrWeekIndexOutOfRange) {
        // no such occurrence in this month
    }

SEE ALSO:
  - time.go: DateOfMonth raises calendar errors
  - daterange.go: DateRange constructors raise range errors
  - api/handlers.go: Maps IsDomainError to HTTP 400
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWeekIndexOutOfRange is returned when a week index is below -1, zero,
	// larger than the number of weeks in the month, or names an occurrence
	// the month does not have (e.g. a fifth Monday).
	ErrWeekIndexOutOfRange = errors.New("week index out of range")

	// ErrMonthOutOfRange is returned when a month is not in 1..12.
	ErrMonthOutOfRange = errors.New("month out of range")

	// ErrWeekdayOutOfRange is returned when a weekday is not Sunday..Saturday.
	ErrWeekdayOutOfRange = errors.New("weekday out of range")

	// ErrWrongReferenceFrame is returned when a time is not in UTC.
	ErrWrongReferenceFrame = errors.New("time is not in the UTC reference frame")

	// ErrInvertedRange is returned when a range ends before it starts.
	ErrInvertedRange = errors.New("invalid range: end before start")

	// ErrDegenerateStep is returned when a range is stepped by zero or a negative duration.
	ErrDegenerateStep = errors.New("range step must be positive")

	// ErrHolidayStoreFailed is returned when materialized holidays cannot be persisted.
	ErrHolidayStoreFailed = errors.New("holiday store failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DomainError records which operation rejected which input.
type DomainError struct {
	Op    string // e.g. "DateOfMonth", "NewDateRange"
	Field string // e.g. "week", "start"
	Value any
	Err   error // one of the sentinels above
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s %v: %v", e.Op, e.Field, e.Value, e.Err)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func domainError(op, field string, value any, err error) error {
	return &DomainError{Op: op, Field: field, Value: value, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsDomainError returns true if the error is due to invalid caller input.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrWeekIndexOutOfRange) ||
		errors.Is(err, ErrMonthOutOfRange) ||
		errors.Is(err, ErrWeekdayOutOfRange) ||
		errors.Is(err, ErrWrongReferenceFrame) ||
		errors.Is(err, ErrInvertedRange) ||
		errors.Is(err, ErrDegenerateStep)
}
