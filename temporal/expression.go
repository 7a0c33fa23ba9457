/*
Package temporal provides composable date predicates.

PURPOSE:
  A temporal expression answers one question about a date: does the rule
  include it? Primitive rules ("second Monday", "April through June") are
  combined with union, intersection and difference into trees that express
  schedules like "every weekday in the first week of January".

KEY CONCEPTS:
  - Expression: the predicate interface, Includes(date) bool
  - DayInMonth, RangeInYear: primitive rules
  - Sequence (OR), Intersection (AND), Difference (AND NOT): composites
  - DatesIn: filters a generic.DateRange through an expression

CLOSED SET:
  Expression has an unexported method, so the five types in this package
  are its only implementations. Describe relies on that to switch over
  every variant.

IMMUTABILITY:
  Expressions are built bottom-up and never change afterwards. Composites
  copy the child slice they are given, so a tree cannot be altered through
  the caller's slice and cannot contain cycles. A tree can be evaluated
  from any number of goroutines.

NIL MEMBERS:
  A nil member of a composite matches no date. Sequence(nil) includes
  nothing, Intersection(a, nil) includes nothing, and Difference(a, nil)
  is a.

USAGE:
  // April through September, except June
  season := temporal.Difference(
      temporal.RangeInYear(4, 1, 9, 30),
      temporal.RangeInYear(6, 1, 6, 30),
  )
  for d := range temporal.DatesIn(season, rng) { ... }

SEE ALSO:
  - generic/daterange.go: the ranges expressions are applied to
  - holiday/catalog.go: holiday rules built from these primitives
*/
package temporal

import (
	"time"

	"github.com/warp/recurrence-engine/generic"
)

// Expression is a boolean predicate over dates.
type Expression interface {
	Includes(date generic.TimePoint) bool
	expression()
}

// =============================================================================
// DAY IN MONTH - "2nd Tuesday", "last Friday"
// =============================================================================

// DayInMonthExpr matches one weekday occurrence within any month.
type DayInMonthExpr struct {
	weekday time.Weekday
	week    int
}

// DayInMonth matches the week-th occurrence of weekday in a month, counting
// from zero (0 is the first Tuesday, 1 the second). Negative values count
// from the end: -1 is the last occurrence, -2 the one before it.
func DayInMonth(weekday time.Weekday, week int) DayInMonthExpr {
	return DayInMonthExpr{weekday: weekday, week: week}
}

func (e DayInMonthExpr) Weekday() time.Weekday { return e.weekday }
func (e DayInMonthExpr) Week() int             { return e.week }

func (e DayInMonthExpr) Includes(date generic.TimePoint) bool {
	return date.Weekday() == e.weekday && e.weekMatches(date)
}

func (e DayInMonthExpr) weekMatches(date generic.TimePoint) bool {
	if e.week >= 0 {
		return (date.Day()-1)/7 == e.week
	}
	remaining := generic.DaysInMonth(date.Year(), date.Month()) - date.Day()
	return remaining/7 == -e.week-1
}

func (DayInMonthExpr) expression() {}

// =============================================================================
// RANGE IN YEAR - month and day bounds
// =============================================================================

// RangeInYearExpr bounds the month and the day of month independently:
// RangeInYear(4, 1, 6, 30) is "months April to June, days 1 to 30", so it
// excludes May 31 and cannot wrap around the end of the year.
type RangeInYearExpr struct {
	startMonth, startDay int
	endMonth, endDay     int
}

func RangeInYear(startMonth, startDay, endMonth, endDay int) RangeInYearExpr {
	return RangeInYearExpr{startMonth: startMonth, startDay: startDay, endMonth: endMonth, endDay: endDay}
}

// Bounds returns the constructor arguments.
func (e RangeInYearExpr) Bounds() (startMonth, startDay, endMonth, endDay int) {
	return e.startMonth, e.startDay, e.endMonth, e.endDay
}

func (e RangeInYearExpr) Includes(date generic.TimePoint) bool {
	month, day := int(date.Month()), date.Day()
	return month >= e.startMonth && month <= e.endMonth &&
		day >= e.startDay && day <= e.endDay
}

func (RangeInYearExpr) expression() {}

// =============================================================================
// COMPOSITES
// =============================================================================

// SequenceExpr is the union of its members.
type SequenceExpr struct {
	members []Expression
}

// Sequence includes a date when any member does. An empty sequence includes nothing.
func Sequence(members ...Expression) SequenceExpr {
	return SequenceExpr{members: clone(members)}
}

func (e SequenceExpr) Members() []Expression { return clone(e.members) }

func (e SequenceExpr) Includes(date generic.TimePoint) bool {
	for _, m := range e.members {
		if m != nil && m.Includes(date) {
			return true
		}
	}
	return false
}

func (SequenceExpr) expression() {}

// IntersectionExpr is the intersection of its members.
type IntersectionExpr struct {
	members []Expression
}

// Intersection includes a date when every member does. An empty intersection includes everything.
func Intersection(members ...Expression) IntersectionExpr {
	return IntersectionExpr{members: clone(members)}
}

func (e IntersectionExpr) Members() []Expression { return clone(e.members) }

func (e IntersectionExpr) Includes(date generic.TimePoint) bool {
	for _, m := range e.members {
		if m == nil || !m.Includes(date) {
			return false
		}
	}
	return true
}

func (IntersectionExpr) expression() {}

// DifferenceExpr removes the dates of one expression from another.
type DifferenceExpr struct {
	included Expression
	excluded Expression
}

func Difference(included, excluded Expression) DifferenceExpr {
	return DifferenceExpr{included: included, excluded: excluded}
}

func (e DifferenceExpr) Included() Expression { return e.included }
func (e DifferenceExpr) Excluded() Expression { return e.excluded }

// Includes never evaluates excluded for a date that included rejects.
func (e DifferenceExpr) Includes(date generic.TimePoint) bool {
	if e.included == nil || !e.included.Includes(date) {
		return false
	}
	return e.excluded == nil || !e.excluded.Includes(date)
}

func (DifferenceExpr) expression() {}

func clone(members []Expression) []Expression {
	out := make([]Expression, len(members))
	copy(out, members)
	return out
}

// =============================================================================
// CONVENIENCE
// =============================================================================

// OnWeekday matches every occurrence of weekday.
func OnWeekday(weekday time.Weekday) SequenceExpr {
	members := make([]Expression, 0, 5)
	for week := 0; week < 5; week++ {
		members = append(members, DayInMonth(weekday, week))
	}
	return Sequence(members...)
}

// InMonth matches every day of month.
func InMonth(month time.Month) RangeInYearExpr {
	return RangeInYear(int(month), 1, int(month), 31)
}

// OnDate matches one month and day every year.
func OnDate(month time.Month, day int) RangeInYearExpr {
	return RangeInYear(int(month), day, int(month), day)
}
