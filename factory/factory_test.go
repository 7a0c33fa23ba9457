package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/recurrence-engine/factory"
	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/temporal"
)

// =============================================================================
// REGISTRY
// =============================================================================

func TestDefaultRegistry_HolidayRules(t *testing.T) {
	reg := factory.DefaultRegistry()

	rule, err := reg.Lookup("us.thanksgiving")
	require.NoError(t, err)
	assert.Equal(t, "Thanksgiving Day", rule.Description)
	assert.True(t, rule.Expression.Includes(generic.NewTimePoint(2016, time.November, 24)))

	all, err := reg.Lookup("us.holidays")
	require.NoError(t, err)
	assert.True(t, all.Expression.Includes(generic.NewTimePoint(2016, time.July, 4)))
	assert.False(t, all.Expression.Includes(generic.NewTimePoint(2016, time.July, 5)))
}

func TestDefaultRegistry_ListSorted(t *testing.T) {
	rules := factory.DefaultRegistry().List()
	require.NotEmpty(t, rules)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].Name, rules[i].Name)
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := factory.NewRegistry()

	require.NoError(t, reg.Register("paydays", "", temporal.DayInMonth(time.Friday, -1)))
	rule, err := reg.Lookup("paydays")
	require.NoError(t, err)
	assert.Equal(t, "last Friday", rule.Description, "description defaults to Describe")

	err = reg.Register("paydays", "again", temporal.OnDate(time.January, 1))
	assert.ErrorIs(t, err, factory.ErrRuleExists)

	assert.Error(t, reg.Register("", "x", temporal.OnDate(time.January, 1)))
	assert.Error(t, reg.Register("nil", "x", nil))

	_, err = reg.Lookup("missing")
	assert.ErrorIs(t, err, factory.ErrRuleNotFound)
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

func TestParsePlan(t *testing.T) {
	// GIVEN: A JSON plan definition
	// WHEN: Parsing
	// THEN: The rule resolves and defaults apply

	f := factory.NewPlanFactory(factory.DefaultRegistry())
	plan, err := f.ParsePlan(`{
		"id": "support-retainer",
		"rule": "first-of-month",
		"amount": "1250.00",
		"cycle": "fiscal_year",
		"fiscal_year_start": 4,
		"roll_forward": true
	}`)
	require.NoError(t, err)

	assert.Equal(t, "support-retainer", plan.Name)
	assert.Equal(t, "USD", plan.Currency)
	assert.Equal(t, "1250.00", plan.Amount.StringFixed(2))
	assert.Equal(t, generic.PeriodFiscalYear, plan.Cycle.Type)
	assert.Equal(t, time.April, plan.Cycle.FiscalYearStartMonth)
	assert.True(t, plan.RollForward)
	assert.True(t, plan.Schedule.Includes(generic.NewTimePoint(2016, time.March, 1)))
}

func TestBuild_Defaults(t *testing.T) {
	f := factory.NewPlanFactory(factory.DefaultRegistry())
	plan, err := f.Build(factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "10"})
	require.NoError(t, err)
	assert.Equal(t, generic.PeriodMonthly, plan.Cycle.Type)
	assert.Nil(t, plan.Cycle.AnchorDate)
}

func TestBuild_Invalid(t *testing.T) {
	f := factory.NewPlanFactory(factory.DefaultRegistry())

	tests := []struct {
		name string
		pj   factory.PlanJSON
	}{
		{"missing id", factory.PlanJSON{Rule: "mid-month", Amount: "1"}},
		{"unknown rule", factory.PlanJSON{ID: "p", Rule: "every-blue-moon", Amount: "1"}},
		{"bad amount", factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "lots"}},
		{"negative amount", factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "-1"}},
		{"unknown cycle", factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "1", Cycle: "weekly"}},
		{"bad fiscal month", factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "1", FiscalYearStart: 13}},
		{"bad anchor", factory.PlanJSON{ID: "p", Rule: "mid-month", Amount: "1", AnchorDate: "2016-13-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Build(tt.pj)
			assert.ErrorIs(t, err, factory.ErrInvalidPlan)
		})
	}

	_, err := f.Build(factory.PlanJSON{ID: "p", Rule: "nope", Amount: "1"})
	assert.ErrorIs(t, err, factory.ErrRuleNotFound)

	_, err = f.ParsePlan(`{"id":`)
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewPlanFactory(factory.DefaultRegistry())
	in := factory.PlanJSON{
		ID:          "anniv",
		Name:        "Anniversary fee",
		Rule:        "second-tuesday",
		Amount:      "99.50",
		Currency:    "EUR",
		Cycle:       "anniversary",
		AnchorDate:  "2015-06-15",
		RollForward: true,
	}
	plan, err := f.Build(in)
	require.NoError(t, err)

	assert.Equal(t, in, f.ToJSON(plan))
}
