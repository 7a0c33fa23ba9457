package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
	"github.com/warp/recurrence-engine/generic"
)

// =============================================================================
// DATE OF MONTH
// =============================================================================

func TestDateOfMonth_SecondTuesday(t *testing.T) {
	// GIVEN: January 2010 starts on a Friday, February 2010 on a Monday
	// WHEN: Resolving the second Tuesday of each
	// THEN: Jan 12 and Feb 9

	jan, err := generic.DateOfMonth(2, time.Tuesday, time.January, 2010)
	require.NoError(t, err)
	assert.Equal(t, "2010-01-12", jan.String())

	feb, err := generic.DateOfMonth(2, time.Tuesday, time.February, 2010)
	require.NoError(t, err)
	assert.Equal(t, "2010-02-09", feb.String())
}

func TestDateOfMonth_LastOccurrence(t *testing.T) {
	tests := []struct {
		weekday time.Weekday
		month   time.Month
		year    int
		want    string
	}{
		{time.Monday, time.May, 2016, "2016-05-30"},
		{time.Friday, time.February, 2015, "2015-02-27"},
		{time.Saturday, time.February, 2015, "2015-02-28"},
		{time.Sunday, time.January, 2017, "2017-01-29"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := generic.DateOfMonth(-1, tt.weekday, tt.month, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateOfMonth_InvalidMonth(t *testing.T) {
	for _, year := range []int{1900, 2010, 2016, 2100} {
		for _, month := range []time.Month{-1, 0, 13} {
			_, err := generic.DateOfMonth(1, time.Monday, month, year)
			assert.ErrorIs(t, err, generic.ErrMonthOutOfRange, "month %d year %d", month, year)
			assert.True(t, generic.IsDomainError(err))
		}
	}
}

func TestDateOfMonth_InvalidWeekIndex(t *testing.T) {
	// GIVEN: Months of 28, 29, 30 and 31 days
	// WHEN: Asking for week -7, 0 or 7
	// THEN: Week index error

	months := []struct {
		month time.Month
		year  int
	}{
		{time.February, 2015},
		{time.February, 2016},
		{time.April, 2016},
		{time.January, 2016},
	}
	for _, m := range months {
		for _, week := range []int{-7, -2, 0, 7} {
			_, err := generic.DateOfMonth(week, time.Wednesday, m.month, m.year)
			assert.ErrorIs(t, err, generic.ErrWeekIndexOutOfRange, "week %d in %s %d", week, m.month, m.year)
		}
	}
}

func TestDateOfMonth_FifthOccurrenceMissing(t *testing.T) {
	// May 2016 has five Mondays but only four Thursdays
	got, err := generic.DateOfMonth(5, time.Monday, time.May, 2016)
	require.NoError(t, err)
	assert.Equal(t, "2016-05-30", got.String())

	_, err = generic.DateOfMonth(5, time.Thursday, time.May, 2016)
	assert.ErrorIs(t, err, generic.ErrWeekIndexOutOfRange)

	// A 28-day February has four weeks
	_, err = generic.DateOfMonth(5, time.Sunday, time.February, 2015)
	assert.ErrorIs(t, err, generic.ErrWeekIndexOutOfRange)
}

func TestDateOfMonth_InvalidWeekday(t *testing.T) {
	_, err := generic.DateOfMonth(1, time.Weekday(7), time.March, 2016)
	assert.ErrorIs(t, err, generic.ErrWeekdayOutOfRange)

	var domainErr *generic.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DateOfMonth", domainErr.Op)
	assert.Equal(t, "weekday", domainErr.Field)
}

func TestDateOfMonth_AlwaysInMonthOnWeekday(t *testing.T) {
	// For every valid input the result lies in the month and falls on the weekday.
	for year := 2000; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				for _, week := range []int{-1, 1, 2, 3, 4} {
					got, err := generic.DateOfMonth(week, wd, month, year)
					require.NoError(t, err)
					require.Equal(t, month, got.Month(), "week %d %s %s %d", week, wd, month, year)
					require.Equal(t, year, got.Year())
					require.Equal(t, wd, got.Weekday())
					require.True(t, generic.IsUTC(got.Time))
				}
			}
		}
	}
}

func TestDateOfMonth_MatchesRRule(t *testing.T) {
	// Cross-check against RFC 5545 BYDAY=nXX as implemented by rrule-go.
	rruleDays := map[time.Weekday]rrule.Weekday{
		time.Sunday: rrule.SU, time.Monday: rrule.MO, time.Tuesday: rrule.TU,
		time.Wednesday: rrule.WE, time.Thursday: rrule.TH, time.Friday: rrule.FR,
		time.Saturday: rrule.SA,
	}
	from := time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC)

	for wd, rwd := range rruleDays {
		for _, week := range []int{-1, 1, 2, 3, 4, 5} {
			r, err := rrule.NewRRule(rrule.ROption{
				Freq:      rrule.MONTHLY,
				Byweekday: []rrule.Weekday{rwd.Nth(week)},
				Dtstart:   from,
				Until:     until,
			})
			require.NoError(t, err)

			expected := make(map[string]string)
			for _, occ := range r.All() {
				expected[occ.Format("2006-01")] = occ.Format("2006-01-02")
			}

			for year := 2012; year <= 2020; year++ {
				for month := time.January; month <= time.December; month++ {
					key := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
					got, err := generic.DateOfMonth(week, wd, month, year)
					want, ok := expected[key]
					if !ok {
						assert.ErrorIs(t, err, generic.ErrWeekIndexOutOfRange, "week %d %s %s", week, wd, key)
						continue
					}
					require.NoError(t, err, "week %d %s %s", week, wd, key)
					assert.Equal(t, want, got.String(), "week %d %s", week, wd)
				}
			}
		}
	}
}

// =============================================================================
// TIME POINT
// =============================================================================

func TestFromTime_RejectsNonUTC(t *testing.T) {
	_, err := generic.FromTime(time.Date(2016, 1, 1, 0, 0, 0, 0, time.FixedZone("UTC", 0)))
	assert.ErrorIs(t, err, generic.ErrWrongReferenceFrame)

	_, err = generic.FromTime(time.Date(2016, 1, 1, 0, 0, 0, 0, time.FixedZone("EST", -5*3600)))
	assert.ErrorIs(t, err, generic.ErrWrongReferenceFrame)
}

func TestFromTime_Granularity(t *testing.T) {
	day, err := generic.FromTime(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, generic.GranularityDay, day.Granularity)

	hour, err := generic.FromTime(time.Date(2016, 1, 1, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, generic.GranularityHour, hour.Granularity)

	exact, err := generic.FromTime(time.Date(2016, 1, 1, 6, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, generic.GranularityExact, exact.Granularity)
}

func TestTimePoint_DayGranularityIgnoresClock(t *testing.T) {
	a := generic.TimePoint{Time: time.Date(2016, 3, 1, 9, 0, 0, 0, time.UTC), Granularity: generic.GranularityDay}
	b := generic.NewTimePoint(2016, time.March, 1)
	assert.True(t, a.Equal(b))
	assert.False(t, a.After(b))
	assert.True(t, b.BeforeOrEqual(a))
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, 29, generic.DaysInMonth(2016, time.February))
	assert.Equal(t, 28, generic.DaysInMonth(2015, time.February))
	assert.Equal(t, 31, generic.DaysInMonth(2016, time.December))

	assert.Equal(t, 4, generic.WeeksInMonth(2015, time.February))
	assert.Equal(t, 5, generic.WeeksInMonth(2016, time.February))
	assert.Equal(t, 5, generic.WeeksInMonth(2016, time.April))

	assert.Equal(t, "2016-02-29", generic.EndOfMonth(2016, time.February).String())
	assert.Equal(t, 366, generic.DaysBetween(generic.StartOfYear(2016), generic.StartOfYear(2017)))
	assert.Equal(t, 5, generic.WeekdayIndex(generic.NewTimePoint(2016, time.January, 1)))
}
