/*
store.go - Holiday types and the persistence interface for materialized dates

PURPOSE:
  Rules are never stored. What gets stored is their output: the concrete
  holiday dates a calendar produced for a year. Storing the output lets
  other systems (payroll, billing) read a fixed calendar without linking
  the rule engine, and lets an operator audit what was published.

KEY INTERFACES:
  HolidayCalendar: Answers "is this a holiday?" (computed or stored)
  HolidayStore:    Persists materialized holidays per calendar

IDEMPOTENCY:
  SaveHolidays upserts on (calendar, date, name). Materializing the same
  year twice leaves one row per holiday. ReplaceYear is what
  materialization uses, so a failed write never leaves a year empty.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - holiday/calendar.go: Computes and materializes holidays
  - api/scheduler.go: Materializes upcoming years on a cron schedule
*/
package generic

import (
	"context"
	"fmt"
)

// =============================================================================
// HOLIDAY - One materialized occurrence of a named rule
// =============================================================================

type Holiday struct {
	ID         string
	CalendarID string    // e.g. "us-federal"
	Date       TimePoint // The holiday date
	Name       string    // e.g. "Thanksgiving Day"
	Rule       string    // Registry name of the rule that produced it
}

// HolidayID is the stable identifier used for upserts.
func HolidayID(calendarID string, date TimePoint, rule string) string {
	return fmt.Sprintf("%s:%s:%s", calendarID, date.Time.Format("2006-01-02"), rule)
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// IsWorkdayWithHolidays checks if a date is a working day, considering holidays.
func (tp TimePoint) IsWorkdayWithHolidays(calendar HolidayCalendar) bool {
	if tp.IsWeekend() {
		return false
	}
	if calendar != nil && calendar.IsHoliday(tp) {
		return false
	}
	return true
}

// MaxWorkdayRoll bounds how far NextWorkday searches.
const MaxWorkdayRoll = 366

// NextWorkday returns tp if it is a working day, otherwise the first working
// day after it. ok is false when none is found within MaxWorkdayRoll days,
// and tp is returned unchanged.
func (tp TimePoint) NextWorkday(calendar HolidayCalendar) (next TimePoint, ok bool) {
	date := tp
	for i := 0; i <= MaxWorkdayRoll; i++ {
		if date.IsWorkdayWithHolidays(calendar) {
			return date, true
		}
		date = date.AddDays(1)
	}
	return tp, false
}

// =============================================================================
// HOLIDAY STORE - Persistence of materialized holidays
// =============================================================================

type HolidayStore interface {
	// SaveHolidays persists all holidays atomically. Either all succeed or none do.
	SaveHolidays(ctx context.Context, holidays []Holiday) error

	// LoadHolidays returns holidays in [from, to), ordered by date then name.
	LoadHolidays(ctx context.Context, calendarID string, from, to TimePoint) ([]Holiday, error)

	// IsHoliday checks a single date.
	IsHoliday(ctx context.Context, calendarID string, date TimePoint) (bool, error)

	// DeleteYear removes one calendar year.
	DeleteYear(ctx context.Context, calendarID string, year int) error

	// ReplaceYear swaps one calendar year for holidays atomically. If it
	// fails, the previously stored year is unchanged.
	ReplaceYear(ctx context.Context, calendarID string, year int, holidays []Holiday) error
}
