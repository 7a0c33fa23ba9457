/*
Package holiday builds holiday calendars out of temporal expressions.

PURPOSE:
  Holidays are the canonical recurrence problem: most are either a fixed
  date ("July 4") or an nth weekday of a month ("fourth Thursday of
  November"). Each is a named Rule whose Expression is built from the
  temporal primitives; a Calendar evaluates a set of rules for a year and
  can materialize the result into a generic.HolidayStore.

RULE SHAPES:
  Fixed date:     temporal.OnDate(time.July, 4)
  Floating date:  temporal.Intersection(
                      temporal.DayInMonth(time.Thursday, 3),
                      temporal.InMonth(time.November))
  Last weekday:   temporal.DayInMonth(time.Monday, -1) in May

OBSERVANCE:
  Dates are the statutory dates. Weekend observance shifts (a Saturday
  holiday observed on Friday) are not applied.

SEE ALSO:
  - calendar.go: Calendar evaluation and materialization
  - factory/registry.go: Registers these rules under "us.<slug>" names
*/
package holiday

import (
	"time"

	"github.com/warp/recurrence-engine/temporal"
)

// Rule is one named holiday.
type Rule struct {
	Slug       string // registry key suffix, e.g. "thanksgiving"
	Name       string // display name, e.g. "Thanksgiving Day"
	Expression temporal.Expression
}

// USFederalID is the calendar ID of the US federal catalog.
const USFederalID = "us-federal"

// USFederal returns the US federal holidays (5 U.S.C. 6103).
func USFederal() []Rule {
	return []Rule{
		{Slug: "new-years-day", Name: "New Year's Day", Expression: temporal.OnDate(time.January, 1)},
		{Slug: "mlk-day", Name: "Birthday of Martin Luther King, Jr.", Expression: nthWeekday(time.January, time.Monday, 3)},
		{Slug: "presidents-day", Name: "Washington's Birthday", Expression: nthWeekday(time.February, time.Monday, 3)},
		{Slug: "memorial-day", Name: "Memorial Day", Expression: nthWeekday(time.May, time.Monday, -1)},
		{Slug: "juneteenth", Name: "Juneteenth National Independence Day", Expression: temporal.OnDate(time.June, 19)},
		{Slug: "independence-day", Name: "Independence Day", Expression: temporal.OnDate(time.July, 4)},
		{Slug: "labor-day", Name: "Labor Day", Expression: nthWeekday(time.September, time.Monday, 1)},
		{Slug: "columbus-day", Name: "Columbus Day", Expression: nthWeekday(time.October, time.Monday, 2)},
		{Slug: "veterans-day", Name: "Veterans Day", Expression: temporal.OnDate(time.November, 11)},
		{Slug: "thanksgiving", Name: "Thanksgiving Day", Expression: nthWeekday(time.November, time.Thursday, 4)},
		{Slug: "christmas-day", Name: "Christmas Day", Expression: temporal.OnDate(time.December, 25)},
	}
}

// nthWeekday takes the human count (1 = first, -1 = last).
func nthWeekday(month time.Month, weekday time.Weekday, n int) temporal.Expression {
	week := n - 1
	if n < 0 {
		week = n
	}
	return temporal.Intersection(temporal.DayInMonth(weekday, week), temporal.InMonth(month))
}

// Weekend matches every Saturday and Sunday.
func Weekend() temporal.Expression {
	return temporal.Sequence(temporal.OnWeekday(time.Saturday), temporal.OnWeekday(time.Sunday))
}

// Weekdays matches Monday through Friday.
func Weekdays() temporal.Expression {
	return temporal.Difference(temporal.RangeInYear(1, 1, 12, 31), Weekend())
}
