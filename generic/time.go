package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - A date value anchored to the UTC reference frame
// =============================================================================

// TimePoint is the only date value the core accepts. Constructors always
// produce UTC; FromTime rejects anything else.
type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

// Granularity controls how TimePoints compare. Finer granularities sort after
// coarser ones so the finer of two can be picked with max.
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityHour
	GranularityExact
)

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

func NewTimePointWithHour(year int, month time.Month, day, hour int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, hour, 0, 0, 0, time.UTC), Granularity: GranularityHour}
}

// FromTime wraps t, picking the coarsest granularity that loses nothing.
func FromTime(t time.Time) (TimePoint, error) {
	if !IsUTC(t) {
		return TimePoint{}, domainError("FromTime", "location", t.Location(), ErrWrongReferenceFrame)
	}
	return TimePoint{Time: t, Granularity: granularityOf(t)}, nil
}

// Today is the current UTC date.
func Today() TimePoint {
	now := time.Now().UTC()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

func granularityOf(t time.Time) Granularity {
	switch {
	case t.Equal(t.Truncate(24 * time.Hour)):
		return GranularityDay
	case t.Equal(t.Truncate(time.Hour)):
		return GranularityHour
	default:
		return GranularityExact
	}
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityHour:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), tp.Time.Hour(), 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity}
}
func (tp TimePoint) AddMonths(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, n, 0), Granularity: tp.Granularity}
}
func (tp TimePoint) AddYears(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(n, 0, 0), Granularity: tp.Granularity}
}

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsZero() bool { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format("2006-01-02")
	case GranularityHour:
		return tp.Time.Format("2006-01-02 15:00")
	default:
		return tp.Time.Format(time.RFC3339)
	}
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// IsUTC reports whether t is in the core's reference frame. A fixed zone
// named "UTC" is not the same frame.
func IsUTC(t time.Time) bool {
	return t.Location() == time.UTC
}

// WeekdayIndex returns 0 for Sunday through 6 for Saturday.
func WeekdayIndex(tp TimePoint) int {
	return int(tp.Weekday())
}

// DaysInMonth returns the length of the month in the proleptic Gregorian calendar.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeeksInMonth is ceil(DaysInMonth/7): 4 for a 28-day February, 5 otherwise.
func WeeksInMonth(year int, month time.Month) int {
	return (DaysInMonth(year, month) + 6) / 7
}

// DateOfMonth resolves expressions like "the second Tuesday of January 2010".
// week is 1 for the first occurrence, 2 for the second and so on; -1 asks
// for the last occurrence.
func DateOfMonth(week int, weekday time.Weekday, month time.Month, year int) (TimePoint, error) {
	const op = "DateOfMonth"

	if month < time.January || month > time.December {
		return TimePoint{}, domainError(op, "month", int(month), ErrMonthOutOfRange)
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return TimePoint{}, domainError(op, "weekday", int(weekday), ErrWeekdayOutOfRange)
	}
	if week < -1 || week == 0 || week > WeeksInMonth(year, month) {
		return TimePoint{}, domainError(op, "week", week, ErrWeekIndexOutOfRange)
	}

	if week == -1 {
		last := NewTimePoint(year, month, DaysInMonth(year, month))
		back := (int(last.Weekday()) - int(weekday) + 7) % 7
		return last.AddDays(-back), nil
	}

	first := StartOfMonth(year, month)
	diff := int(weekday) - int(first.Weekday())
	offset := (week-1)*7 + diff
	if diff < 0 {
		// The first occurrence falls in the second calendar week.
		offset = week*7 + diff
	}

	date := first.AddDays(offset)
	if date.Month() != month {
		return TimePoint{}, domainError(op, "week", week, ErrWeekIndexOutOfRange)
	}
	return date, nil
}

func StartOfYear(year int) TimePoint                    { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint                      { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month, DaysInMonth(year, month))
}

// DaysBetween counts whole days from one point to another.
func DaysBetween(from, to TimePoint) int { return int(to.normalize().Sub(from.normalize()).Hours() / 24) }
