package temporal

import (
	"fmt"
	"iter"
	"strings"

	"github.com/warp/recurrence-engine/generic"
)

// DatesIn yields the dates of rng that expr includes, in the range's order.
// Like rng.Dates, every call starts a fresh pass.
func DatesIn(expr Expression, rng generic.DateRange) iter.Seq[generic.TimePoint] {
	return func(yield func(generic.TimePoint) bool) {
		for date := range rng.Dates() {
			if expr.Includes(date) && !yield(date) {
				return
			}
		}
	}
}

// Collect gathers DatesIn into a slice.
func Collect(expr Expression, rng generic.DateRange) []generic.TimePoint {
	var out []generic.TimePoint
	for date := range DatesIn(expr, rng) {
		out = append(out, date)
	}
	return out
}

// =============================================================================
// DESCRIBE - Human-readable rendering
// =============================================================================

// Describe renders expr for people, e.g. "2nd Monday" or
// "04/01-09/30 except 06/01-06/30".
func Describe(expr Expression) string {
	switch e := expr.(type) {
	case nil:
		return "never"
	case DayInMonthExpr:
		return describeDayInMonth(e)
	case RangeInYearExpr:
		if e.startMonth == e.endMonth && e.startDay == e.endDay {
			return fmt.Sprintf("every %02d/%02d", e.startMonth, e.startDay)
		}
		return fmt.Sprintf("%02d/%02d-%02d/%02d", e.startMonth, e.startDay, e.endMonth, e.endDay)
	case SequenceExpr:
		return "any of (" + describeAll(e.members) + ")"
	case IntersectionExpr:
		return "all of (" + describeAll(e.members) + ")"
	case DifferenceExpr:
		return Describe(e.included) + " except " + Describe(e.excluded)
	default:
		panic(fmt.Sprintf("temporal: unknown expression %T", expr))
	}
}

func describeAll(members []Expression) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = Describe(m)
	}
	return strings.Join(parts, ", ")
}

func describeDayInMonth(e DayInMonthExpr) string {
	name := e.weekday.String()
	switch {
	case e.week == -1:
		return "last " + name
	case e.week < -1:
		return ordinal(-e.week) + " to last " + name
	default:
		return ordinal(e.week+1) + " " + name
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	if n%100 >= 11 && n%100 <= 13 {
		suffix = "th"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
