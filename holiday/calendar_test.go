package holiday_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/generic/store"
	"github.com/warp/recurrence-engine/holiday"
	"github.com/warp/recurrence-engine/temporal"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var federal2016 = map[string]string{
	"new-years-day":    "2016-01-01",
	"mlk-day":          "2016-01-18",
	"presidents-day":   "2016-02-15",
	"memorial-day":     "2016-05-30",
	"juneteenth":       "2016-06-19",
	"independence-day": "2016-07-04",
	"labor-day":        "2016-09-05",
	"columbus-day":     "2016-10-10",
	"veterans-day":     "2016-11-11",
	"thanksgiving":     "2016-11-24",
	"christmas-day":    "2016-12-25",
}

func TestUSFederal_2016(t *testing.T) {
	// GIVEN: The US federal calendar
	// WHEN: Computing 2016
	// THEN: One date per rule, in date order

	cal := holiday.NewUSFederal(nil, quietLogger())
	got, err := cal.Holidays(2016)
	require.NoError(t, err)
	require.Len(t, got, len(federal2016))

	for i, h := range got {
		assert.Equal(t, federal2016[h.Rule], h.Date.String(), h.Rule)
		assert.Equal(t, holiday.USFederalID, h.CalendarID)
		assert.Equal(t, generic.HolidayID(holiday.USFederalID, h.Date, h.Rule), h.ID)
		if i > 0 {
			assert.False(t, h.Date.Before(got[i-1].Date))
		}
	}
}

func TestUSFederal_OneDatePerRulePerYear(t *testing.T) {
	for year := 2000; year <= 2040; year++ {
		rng, err := generic.NewDateRangeUntil(generic.StartOfYear(year), generic.StartOfYear(year+1))
		require.NoError(t, err)
		for _, rule := range holiday.USFederal() {
			assert.Len(t, temporal.Collect(rule.Expression, rng), 1, "%s %d", rule.Slug, year)
		}
	}
}

func TestCalendar_BusinessDays(t *testing.T) {
	cal := holiday.NewUSFederal(nil, quietLogger())

	assert.False(t, cal.IsBusinessDay(generic.NewTimePoint(2016, time.November, 24)), "Thanksgiving")
	assert.False(t, cal.IsBusinessDay(generic.NewTimePoint(2016, time.November, 26)), "Saturday")
	assert.True(t, cal.IsBusinessDay(generic.NewTimePoint(2016, time.November, 25)))

	next := cal.NextBusinessDay(generic.NewTimePoint(2016, time.November, 24))
	assert.Equal(t, "2016-11-25", next.String())

	// Christmas on a Sunday is not shifted, so the Monday is a business day.
	next = cal.NextBusinessDay(generic.NewTimePoint(2016, time.December, 24))
	assert.Equal(t, "2016-12-26", next.String())

	// Weekend then Memorial Day
	next = cal.NextBusinessDay(generic.NewTimePoint(2016, time.May, 28))
	assert.Equal(t, "2016-05-31", next.String())
}

func TestCalendar_NextBusinessDayIsBounded(t *testing.T) {
	// Empty intersection: every date is a holiday
	cal := &holiday.Calendar{ID: "closed", Rules: []holiday.Rule{{Name: "Closed", Slug: "closed", Expression: temporal.Intersection()}}}

	date := generic.NewTimePoint(2016, time.March, 1)
	assert.Equal(t, "2016-03-01", cal.NextBusinessDay(date).String())

	_, ok := date.NextWorkday(cal)
	assert.False(t, ok)
}

func TestCalendar_MaterializeAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	cal := holiday.NewUSFederal(mem, quietLogger())

	// WHEN: Materializing twice
	n, err := cal.Materialize(ctx, 2016)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	_, err = cal.Materialize(ctx, 2016)
	require.NoError(t, err)

	// THEN: Stored once
	stored, err := mem.LoadHolidays(ctx, holiday.USFederalID, generic.StartOfYear(2016), generic.StartOfYear(2017))
	require.NoError(t, err)
	assert.Len(t, stored, 11)

	ok, err := mem.IsHoliday(ctx, holiday.USFederalID, generic.NewTimePoint(2016, time.July, 4))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCalendar_LoadMaterializesOnDemand(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	cal := holiday.NewUSFederal(mem, quietLogger())

	got, err := cal.Load(ctx, 2017)
	require.NoError(t, err)
	assert.Len(t, got, 11)

	stored, err := mem.LoadHolidays(ctx, holiday.USFederalID, generic.StartOfYear(2017), generic.StartOfYear(2018))
	require.NoError(t, err)
	assert.Len(t, stored, 11)
}

func TestCalendar_LoadWithoutStore(t *testing.T) {
	cal := holiday.NewUSFederal(nil, quietLogger())
	got, err := cal.Load(context.Background(), 2016)
	require.NoError(t, err)
	assert.Len(t, got, 11)

	_, err = cal.Materialize(context.Background(), 2016)
	assert.ErrorIs(t, err, generic.ErrHolidayStoreFailed)
}

type failingStore struct {
	*store.Memory
}

func (failingStore) ReplaceYear(context.Context, string, int, []generic.Holiday) error {
	return errors.New("disk full")
}

func TestCalendar_MaterializeStoreFailure(t *testing.T) {
	// GIVEN: A year already materialized
	// WHEN: Re-materializing it against a store whose writes fail
	// THEN: The error is a store failure and the stored year survives

	ctx := context.Background()
	mem := store.NewMemory()
	_, err := holiday.NewUSFederal(mem, quietLogger()).Materialize(ctx, 2016)
	require.NoError(t, err)

	cal := holiday.NewUSFederal(failingStore{mem}, quietLogger())
	_, err = cal.Materialize(ctx, 2016)
	assert.ErrorIs(t, err, generic.ErrHolidayStoreFailed)
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, generic.IsDomainError(err))

	stored, err := mem.LoadHolidays(ctx, holiday.USFederalID, generic.StartOfYear(2016), generic.StartOfYear(2017))
	require.NoError(t, err)
	assert.Len(t, stored, 11)
}

func TestNew(t *testing.T) {
	cal, err := holiday.New(holiday.USFederalID, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, holiday.USFederalID, cal.ID)

	_, err = holiday.New("mars", nil, quietLogger())
	assert.ErrorIs(t, err, holiday.ErrUnknownCalendar)
}

func TestWeekdays(t *testing.T) {
	rng, err := generic.NewDateRangeUntil(generic.NewTimePoint(2016, 1, 1), generic.NewTimePoint(2016, 1, 8))
	require.NoError(t, err)

	got := temporal.Collect(holiday.Weekdays(), rng)
	require.Len(t, got, 5)
	for _, d := range got {
		assert.False(t, d.IsWeekend())
	}
	assert.Len(t, temporal.Collect(holiday.Weekend(), rng), 2)
}
