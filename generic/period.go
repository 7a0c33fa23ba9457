package generic

import "time"

// =============================================================================
// PERIOD - Inclusive calendar-day window, e.g. one billing cycle
// =============================================================================

// Period is a closed interval of whole days [Start, End].
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Fiscal year 2025: Apr 1 - Mar 31
//   - Monthly cycle: Mar 1 - Mar 31
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod rejects periods that end before they start.
func NewPeriod(start, end TimePoint) (Period, error) {
	if end.Before(start) {
		return Period{}, domainError("NewPeriod", "end", end, ErrInvertedRange)
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Range converts the period to the half-open DateRange [Start, End+1 day).
func (p Period) Range() (DateRange, error) {
	start := NewTimePoint(p.Start.Year(), p.Start.Month(), p.Start.Day())
	end := NewTimePoint(p.End.Year(), p.End.Month(), p.End.Day()).AddDays(1)
	return NewDateRangeUntil(start, end)
}

// Days returns all days in the period.
func (p Period) Days() []TimePoint {
	r, err := p.Range()
	if err != nil {
		return nil
	}
	return r.Slice()
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
	PeriodFiscalYear   PeriodType = "fiscal_year"   // Custom start (e.g., Apr 1)
	PeriodAnniversary  PeriodType = "anniversary"   // Based on an anchor date
	PeriodRolling      PeriodType = "rolling"       // Rolling 12 months
	PeriodMonthly      PeriodType = "monthly"       // Calendar month
	PeriodQuarterly    PeriodType = "quarterly"     // Jan-Mar, Apr-Jun, ...
)

// ParsePeriodType accepts the string forms above; ok is false for anything else.
func ParsePeriodType(s string) (PeriodType, bool) {
	switch pt := PeriodType(s); pt {
	case PeriodCalendarYear, PeriodFiscalYear, PeriodAnniversary, PeriodRolling, PeriodMonthly, PeriodQuarterly:
		return pt, true
	}
	return "", false
}

// PeriodConfig defines how to calculate periods for a billing plan
type PeriodConfig struct {
	Type PeriodType

	// For fiscal year: which month starts the fiscal year (1-12)
	FiscalYearStartMonth time.Month

	// For anniversary: the anchor date (e.g., contract start)
	AnchorDate *TimePoint
}

// =============================================================================
// PERIOD CALCULATOR - Determines which period a date falls into
// =============================================================================

// PeriodFor returns the period that contains the given date
func (pc PeriodConfig) PeriodFor(date TimePoint) Period {
	switch pc.Type {
	case PeriodCalendarYear:
		return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}

	case PeriodFiscalYear:
		return pc.fiscalYearPeriod(date)

	case PeriodAnniversary:
		if pc.AnchorDate == nil {
			return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}
		}
		return pc.anniversaryPeriod(date)

	case PeriodRolling:
		return Period{Start: date.AddYears(-1).AddDays(1), End: date}

	case PeriodMonthly:
		return Period{Start: StartOfMonth(date.Year(), date.Month()), End: EndOfMonth(date.Year(), date.Month())}

	case PeriodQuarterly:
		first := time.Month((int(date.Month())-1)/3*3 + 1)
		return Period{Start: StartOfMonth(date.Year(), first), End: EndOfMonth(date.Year(), first+2)}

	default:
		return Period{Start: StartOfYear(date.Year()), End: EndOfYear(date.Year())}
	}
}

func (pc PeriodConfig) fiscalYearPeriod(date TimePoint) Period {
	startMonth := pc.FiscalYearStartMonth
	if startMonth < time.January || startMonth > time.December {
		startMonth = time.January
	}

	year := date.Year()
	fiscalStart := NewTimePoint(year, startMonth, 1)

	// If date is before fiscal year start, we're in previous fiscal year
	if date.Before(fiscalStart) {
		fiscalStart = NewTimePoint(year-1, startMonth, 1)
	}

	return Period{Start: fiscalStart, End: fiscalStart.AddYears(1).AddDays(-1)}
}

func (pc PeriodConfig) anniversaryPeriod(date TimePoint) Period {
	anchor := *pc.AnchorDate

	yearsElapsed := date.Year() - anchor.Year()
	start := NewTimePoint(anchor.Year()+yearsElapsed, anchor.Month(), anchor.Day())
	if date.Before(start) {
		start = NewTimePoint(anchor.Year()+yearsElapsed-1, anchor.Month(), anchor.Day())
	}

	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// NextPeriod returns the period following this one under the same config.
func (pc PeriodConfig) NextPeriod(p Period) Period {
	return pc.PeriodFor(p.End.AddDays(1))
}
