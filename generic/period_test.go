package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/recurrence-engine/generic"
)

// =============================================================================
// PERIOD CONFIGURATION
// =============================================================================

func TestPeriod_CalendarYear(t *testing.T) {
	// GIVEN: Calendar year period configuration
	// WHEN: Getting period for July 15, 2025
	// THEN: Period is Jan 1 - Dec 31, 2025

	config := generic.PeriodConfig{Type: generic.PeriodCalendarYear}
	period := config.PeriodFor(generic.NewTimePoint(2025, time.July, 15))

	assert.Equal(t, "[2025-01-01, 2025-12-31]", period.String())
}

func TestPeriod_FiscalYear_April(t *testing.T) {
	// GIVEN: Fiscal year starting April 1
	// WHEN: Getting period for July 15, 2025
	// THEN: Period is Apr 1, 2025 - Mar 31, 2026

	config := generic.PeriodConfig{
		Type:                 generic.PeriodFiscalYear,
		FiscalYearStartMonth: time.April,
	}
	period := config.PeriodFor(generic.NewTimePoint(2025, time.July, 15))

	assert.True(t, period.Start.Equal(generic.NewTimePoint(2025, time.April, 1)), "got %s", period.Start)
	assert.True(t, period.End.Equal(generic.NewTimePoint(2026, time.March, 31)), "got %s", period.End)
}

func TestPeriod_FiscalYear_BeforeStart(t *testing.T) {
	// Date before fiscal year start falls in previous fiscal year
	config := generic.PeriodConfig{
		Type:                 generic.PeriodFiscalYear,
		FiscalYearStartMonth: time.April,
	}
	period := config.PeriodFor(generic.NewTimePoint(2025, time.February, 15))

	assert.True(t, period.Start.Equal(generic.NewTimePoint(2024, time.April, 1)), "got %s", period.Start)
}

func TestPeriod_Anniversary(t *testing.T) {
	// GIVEN: Contract signed June 15, 2023
	// WHEN: Getting period for August 1, 2025
	// THEN: Period is Jun 15, 2025 - Jun 14, 2026

	anchor := generic.NewTimePoint(2023, time.June, 15)
	config := generic.PeriodConfig{Type: generic.PeriodAnniversary, AnchorDate: &anchor}

	period := config.PeriodFor(generic.NewTimePoint(2025, time.August, 1))
	assert.Equal(t, "[2025-06-15, 2026-06-14]", period.String())

	period = config.PeriodFor(generic.NewTimePoint(2025, time.March, 1))
	assert.Equal(t, "[2024-06-15, 2025-06-14]", period.String())
}

func TestPeriod_MonthlyAndQuarterly(t *testing.T) {
	date := generic.NewTimePoint(2016, time.February, 10)

	monthly := generic.PeriodConfig{Type: generic.PeriodMonthly}.PeriodFor(date)
	assert.Equal(t, "[2016-02-01, 2016-02-29]", monthly.String())

	quarterly := generic.PeriodConfig{Type: generic.PeriodQuarterly}
	assert.Equal(t, "[2016-01-01, 2016-03-31]", quarterly.PeriodFor(date).String())
	assert.Equal(t, "[2016-10-01, 2016-12-31]", quarterly.PeriodFor(generic.NewTimePoint(2016, time.December, 31)).String())
	assert.Equal(t, "[2016-04-01, 2016-06-30]", quarterly.NextPeriod(quarterly.PeriodFor(date)).String())
}

func TestPeriod_Rolling(t *testing.T) {
	config := generic.PeriodConfig{Type: generic.PeriodRolling}
	period := config.PeriodFor(generic.NewTimePoint(2016, time.March, 1))
	assert.Equal(t, "[2015-03-02, 2016-03-01]", period.String())
}

func TestPeriod_RangeAndDays(t *testing.T) {
	period, err := generic.NewPeriod(generic.NewTimePoint(2016, time.February, 27), generic.NewTimePoint(2016, time.March, 1))
	require.NoError(t, err)

	rng, err := period.Range()
	require.NoError(t, err)
	assert.Equal(t, "2016-03-02", rng.End().String())

	days := period.Days()
	assert.Equal(t, []string{"2016-02-27", "2016-02-28", "2016-02-29", "2016-03-01"}, dates(days))
	for _, d := range days {
		assert.True(t, period.Contains(d))
	}
	assert.False(t, period.Contains(generic.NewTimePoint(2016, time.March, 2)))
}

func TestPeriod_Inverted(t *testing.T) {
	_, err := generic.NewPeriod(generic.NewTimePoint(2016, time.March, 2), generic.NewTimePoint(2016, time.March, 1))
	assert.ErrorIs(t, err, generic.ErrInvertedRange)
}

func TestParsePeriodType(t *testing.T) {
	for _, s := range []string{"calendar_year", "fiscal_year", "anniversary", "rolling", "monthly", "quarterly"} {
		pt, ok := generic.ParsePeriodType(s)
		assert.True(t, ok, s)
		assert.Equal(t, s, string(pt))
	}
	_, ok := generic.ParsePeriodType("weekly")
	assert.False(t, ok)
}
