package holiday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/temporal"
)

// =============================================================================
// CALENDAR - A set of rules evaluated per year
// =============================================================================

// Calendar evaluates its rules directly; Store is only used by Materialize
// and Load and may be nil otherwise.
type Calendar struct {
	ID     string
	Rules  []Rule
	Store  generic.HolidayStore
	Logger *slog.Logger
}

// ErrUnknownCalendar is returned by New for IDs with no rule catalog.
var ErrUnknownCalendar = errors.New("unknown calendar")

// New returns the calendar registered under id.
func New(id string, store generic.HolidayStore, logger *slog.Logger) (*Calendar, error) {
	switch id {
	case USFederalID:
		return NewUSFederal(store, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCalendar, id)
	}
}

// NewUSFederal returns the US federal calendar backed by store.
func NewUSFederal(store generic.HolidayStore, logger *slog.Logger) *Calendar {
	return &Calendar{ID: USFederalID, Rules: USFederal(), Store: store, Logger: logger}
}

// Holidays computes the year's holidays, ordered by date then name.
func (c *Calendar) Holidays(year int) ([]generic.Holiday, error) {
	rng, err := generic.NewDateRangeUntil(generic.StartOfYear(year), generic.StartOfYear(year+1))
	if err != nil {
		return nil, err
	}

	var out []generic.Holiday
	for _, rule := range c.Rules {
		for date := range temporal.DatesIn(rule.Expression, rng) {
			out = append(out, generic.Holiday{
				ID:         generic.HolidayID(c.ID, date, rule.Slug),
				CalendarID: c.ID,
				Date:       date,
				Name:       rule.Name,
				Rule:       rule.Slug,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Name < out[j].Name
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// IsHoliday implements generic.HolidayCalendar.
func (c *Calendar) IsHoliday(date generic.TimePoint) bool {
	for _, rule := range c.Rules {
		if rule.Expression.Includes(date) {
			return true
		}
	}
	return false
}

// IsBusinessDay is false on weekends and holidays.
func (c *Calendar) IsBusinessDay(date generic.TimePoint) bool {
	return date.IsWorkdayWithHolidays(c)
}

// NextBusinessDay returns date itself if it is a business day, otherwise the
// first business day after it. If the rules leave no business day within
// generic.MaxWorkdayRoll days, date is returned unchanged.
func (c *Calendar) NextBusinessDay(date generic.TimePoint) generic.TimePoint {
	next, _ := date.NextWorkday(c)
	return next
}

// =============================================================================
// MATERIALIZATION
// =============================================================================

// Materialize replaces the stored year with freshly computed holidays and
// returns how many were written.
func (c *Calendar) Materialize(ctx context.Context, year int) (int, error) {
	if c.Store == nil {
		return 0, fmt.Errorf("materialize %s %d: %w", c.ID, year, generic.ErrHolidayStoreFailed)
	}

	holidays, err := c.Holidays(year)
	if err != nil {
		return 0, err
	}
	if err := c.Store.ReplaceYear(ctx, c.ID, year, holidays); err != nil {
		return 0, fmt.Errorf("materialize %s %d: %w: %w", c.ID, year, generic.ErrHolidayStoreFailed, err)
	}

	c.logger().Info("materialized holidays", "calendar", c.ID, "year", year, "count", len(holidays))
	return len(holidays), nil
}

// Load reads the stored year, materializing it first if nothing is stored.
func (c *Calendar) Load(ctx context.Context, year int) ([]generic.Holiday, error) {
	if c.Store == nil {
		return c.Holidays(year)
	}

	from, to := generic.StartOfYear(year), generic.StartOfYear(year+1)
	holidays, err := c.Store.LoadHolidays(ctx, c.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w: %w", c.ID, year, generic.ErrHolidayStoreFailed, err)
	}
	if len(holidays) > 0 {
		return holidays, nil
	}

	if _, err := c.Materialize(ctx, year); err != nil {
		return nil, err
	}
	holidays, err = c.Store.LoadHolidays(ctx, c.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w: %w", c.ID, year, generic.ErrHolidayStoreFailed, err)
	}
	return holidays, nil
}

func (c *Calendar) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
