/*
Package billing turns a recurrence rule into dated charges.

PURPOSE:
  A billing plan charges a fixed amount on every date its schedule
  includes: "the 1st of every month", "the second Tuesday", "the last
  Friday". The schedule is a temporal.Expression; the billing cycle that
  groups charges for an invoice is a generic.PeriodConfig.

KEY CONCEPTS:
  - Plan:       schedule + amount + cycle
  - Charge:     one dated amount; Scheduled is the rule's date, Date is when
                it is actually collected (after business-day roll)
  - Prorate:    split a total across n charges without losing cents

MONEY:
  Amounts are decimal.Decimal. Floats never touch money.

BUSINESS DAYS:
  With RollForward set and a holiday calendar supplied, a charge that
  falls on a weekend or holiday is collected on the next business day.

SEE ALSO:
  - factory/plan.go: builds Plans from JSON/YAML definitions
  - holiday/calendar.go: the calendar used for rolling
*/
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/temporal"
)

// ErrInvalidProration is returned when a total is split into fewer than one part.
var ErrInvalidProration = errors.New("proration needs at least one part")

// =============================================================================
// PLAN
// =============================================================================

type Plan struct {
	ID          string
	Name        string
	Rule        string // registry name of Schedule
	Schedule    temporal.Expression
	Amount      decimal.Decimal
	Currency    string
	Cycle       generic.PeriodConfig
	RollForward bool
}

type Charge struct {
	PlanID    string
	Scheduled generic.TimePoint
	Date      generic.TimePoint
	Amount    decimal.Decimal
	Currency  string
}

// Rolled reports whether the charge was moved off its scheduled date.
func (c Charge) Rolled() bool {
	return !c.Date.Equal(c.Scheduled)
}

// Charges returns one charge per scheduled date in rng. cal may be nil.
func (p Plan) Charges(rng generic.DateRange, cal generic.HolidayCalendar) []Charge {
	var out []Charge
	for date := range temporal.DatesIn(p.Schedule, rng) {
		out = append(out, Charge{
			PlanID:    p.ID,
			Scheduled: date,
			Date:      p.collectionDate(date, cal),
			Amount:    p.Amount,
			Currency:  p.Currency,
		})
	}
	return out
}

func (p Plan) collectionDate(date generic.TimePoint, cal generic.HolidayCalendar) generic.TimePoint {
	if !p.RollForward || cal == nil {
		return date
	}
	// A calendar with no working day in reach keeps the scheduled date.
	next, _ := date.NextWorkday(cal)
	return next
}

// Cycle is one billing period and the charges scheduled inside it.
type Cycle struct {
	Period  generic.Period
	Charges []Charge
	Total   decimal.Decimal
}

// CycleCharges returns the billing cycle containing date.
func (p Plan) CycleCharges(date generic.TimePoint, cal generic.HolidayCalendar) (Cycle, error) {
	period := p.Cycle.PeriodFor(date)
	rng, err := period.Range()
	if err != nil {
		return Cycle{}, fmt.Errorf("cycle for %s: %w", date, err)
	}

	charges := p.Charges(rng, cal)
	return Cycle{Period: period, Charges: charges, Total: Total(charges)}, nil
}

// =============================================================================
// AMOUNTS
// =============================================================================

// Total sums charge amounts.
func Total(charges []Charge) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range charges {
		sum = sum.Add(c.Amount)
	}
	return sum
}

// Prorate splits total into n parts rounded to places decimals. The rounding
// remainder goes to the last part so the parts always sum to total.
func Prorate(total decimal.Decimal, n int, places int32) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("prorate %s into %d: %w", total, n, ErrInvalidProration)
	}

	part := total.Div(decimal.NewFromInt(int64(n))).RoundDown(places)
	parts := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = part
		allocated = allocated.Add(part)
	}
	parts[n-1] = total.Sub(allocated)
	return parts, nil
}

// ProrateCharges spreads total over the charges scheduled in rng instead of
// charging the plan amount on each.
func (p Plan) ProrateCharges(total decimal.Decimal, rng generic.DateRange, cal generic.HolidayCalendar) ([]Charge, error) {
	charges := p.Charges(rng, cal)
	parts, err := Prorate(total, len(charges), 2)
	if err != nil {
		return nil, err
	}
	for i := range charges {
		charges[i].Amount = parts[i]
	}
	return charges, nil
}
