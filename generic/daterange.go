package generic

import (
	"fmt"
	"iter"
	"time"
)

// =============================================================================
// DATE RANGE - Immutable half-open span [Start, End) of UTC dates
// =============================================================================

// Day is the default iteration step.
const Day = 24 * time.Hour

// DateRange records a start and a length and can be iterated any number of
// times. A range built with WithStep iterates at that step instead of daily;
// there is no separate stepped type.
//
// The zero value is an empty range at the zero time with a daily step.
type DateRange struct {
	start  TimePoint
	length time.Duration
	step   time.Duration
}

// NewDateRange creates a range covering length from start.
func NewDateRange(start TimePoint, length time.Duration) (DateRange, error) {
	const op = "NewDateRange"

	if !IsUTC(start.Time) {
		return DateRange{}, domainError(op, "start", start.Time, ErrWrongReferenceFrame)
	}
	if length < 0 {
		return DateRange{}, domainError(op, "length", length, ErrInvertedRange)
	}
	return DateRange{start: start, length: length, step: Day}, nil
}

// NewDateRangeUntil creates the range [start, end). end itself is never produced.
func NewDateRangeUntil(start, end TimePoint) (DateRange, error) {
	const op = "NewDateRangeUntil"

	if !IsUTC(start.Time) {
		return DateRange{}, domainError(op, "start", start.Time, ErrWrongReferenceFrame)
	}
	if !IsUTC(end.Time) {
		return DateRange{}, domainError(op, "end", end.Time, ErrWrongReferenceFrame)
	}
	if end.Time.Before(start.Time) {
		return DateRange{}, domainError(op, "end", end, ErrInvertedRange)
	}
	return DateRange{start: start, length: end.Time.Sub(start.Time), step: Day}, nil
}

// WithStep returns the same span iterated every step.
func (r DateRange) WithStep(step time.Duration) (DateRange, error) {
	if step <= 0 {
		return DateRange{}, domainError("WithStep", "step", step, ErrDegenerateStep)
	}
	r.step = step
	return r, nil
}

func (r DateRange) Start() TimePoint { return r.start }

func (r DateRange) End() TimePoint {
	end := r.start.Time.Add(r.length)
	return TimePoint{Time: end, Granularity: max(r.start.Granularity, granularityOf(end))}
}

func (r DateRange) Length() time.Duration { return r.length }

func (r DateRange) Step() time.Duration {
	if r.step <= 0 {
		return Day
	}
	return r.step
}

// Contains reports whether tp lies in [Start, End).
func (r DateRange) Contains(tp TimePoint) bool {
	end := r.start.Time.Add(r.length)
	return !tp.Time.Before(r.start.Time) && tp.Time.Before(end)
}

// Dates yields Start, Start+Step, ... while strictly before End. Every call
// starts over from Start; nothing is shared between iterations.
func (r DateRange) Dates() iter.Seq[TimePoint] {
	start := r.start.Time
	end := start.Add(r.length)
	step := r.Step()
	granularity := r.granularity()

	return func(yield func(TimePoint) bool) {
		for t := start; t.Before(end); t = t.Add(step) {
			if !yield(TimePoint{Time: t, Granularity: granularity}) {
				return
			}
		}
	}
}

// Count is the number of dates Dates would produce.
func (r DateRange) Count() int {
	if r.length <= 0 {
		return 0
	}
	step := r.Step()
	return int((r.length + step - 1) / step)
}

// Slice collects Dates.
func (r DateRange) Slice() []TimePoint {
	out := make([]TimePoint, 0, r.Count())
	for tp := range r.Dates() {
		out = append(out, tp)
	}
	return out
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s) every %s", r.start, r.End(), r.Step())
}

// granularity is the finer of the start's and the step's.
func (r DateRange) granularity() Granularity {
	step := r.Step()
	g := GranularityExact
	switch {
	case step%Day == 0:
		g = GranularityDay
	case step%time.Hour == 0:
		g = GranularityHour
	}
	return max(g, r.start.Granularity)
}
