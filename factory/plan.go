/*
Package factory provides named rules and JSON/YAML to Go plan conversion.

PURPOSE:
  Converts billing plan definitions into billing.Plan values. A plan names
  its schedule by registry key; the factory resolves it to an expression,
  so plans can be configured without code changes while expression trees
  stay in Go.

JSON SCHEMA:
  {
    "id": "support-retainer",
    "name": "Support retainer",
    "rule": "first-of-month",
    "amount": "1250.00",
    "currency": "USD",
    "cycle": "quarterly",
    "fiscal_year_start": 4,
    "roll_forward": true
  }

KEY FEATURES:
  - Validates id, rule and amount
  - Sets defaults (USD, monthly cycle)
  - Same struct decodes from YAML config files

USAGE:
  f := factory.NewPlanFactory(factory.DefaultRegistry())
  plan, err := f.ParsePlan(jsonString)

SEE ALSO:
  - registry.go: Rule names
  - billing/billing.go: Plan type
  - config/config.go: Plans listed in the config file
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/recurrence-engine/billing"
	"github.com/warp/recurrence-engine/generic"
)

// ErrInvalidPlan is returned for plan definitions that fail validation.
var ErrInvalidPlan = errors.New("invalid plan")

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON (and YAML) representation of a plan.
type PlanJSON struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Rule            string `json:"rule" yaml:"rule"`
	Amount          string `json:"amount" yaml:"amount"`
	Currency        string `json:"currency,omitempty" yaml:"currency,omitempty"`
	Cycle           string `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	FiscalYearStart int    `json:"fiscal_year_start,omitempty" yaml:"fiscal_year_start,omitempty"` // Month 1-12
	AnchorDate      string `json:"anchor_date,omitempty" yaml:"anchor_date,omitempty"`             // YYYY-MM-DD
	RollForward     bool   `json:"roll_forward,omitempty" yaml:"roll_forward,omitempty"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts plan definitions to billing plans.
type PlanFactory struct {
	Registry *Registry
}

func NewPlanFactory(registry *Registry) *PlanFactory {
	return &PlanFactory{Registry: registry}
}

// ParsePlan parses a JSON string into a Plan.
func (f *PlanFactory) ParsePlan(jsonStr string) (*billing.Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.Build(pj)
}

// Build validates pj and resolves its rule.
func (f *PlanFactory) Build(pj PlanJSON) (*billing.Plan, error) {
	if pj.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidPlan)
	}

	rule, err := f.Registry.Lookup(pj.Rule)
	if err != nil {
		return nil, fmt.Errorf("%w: plan %s: %w", ErrInvalidPlan, pj.ID, err)
	}

	amount, err := decimal.NewFromString(pj.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: plan %s: amount %q: %w", ErrInvalidPlan, pj.ID, pj.Amount, err)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: plan %s: amount must not be negative", ErrInvalidPlan, pj.ID)
	}

	cycle, err := parseCycle(pj)
	if err != nil {
		return nil, fmt.Errorf("%w: plan %s: %w", ErrInvalidPlan, pj.ID, err)
	}

	plan := &billing.Plan{
		ID:          pj.ID,
		Name:        pj.Name,
		Rule:        rule.Name,
		Schedule:    rule.Expression,
		Amount:      amount,
		Currency:    pj.Currency,
		Cycle:       cycle,
		RollForward: pj.RollForward,
	}
	if plan.Name == "" {
		plan.Name = plan.ID
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	return plan, nil
}

func parseCycle(pj PlanJSON) (generic.PeriodConfig, error) {
	cfg := generic.PeriodConfig{Type: generic.PeriodMonthly}
	if pj.Cycle != "" {
		pt, ok := generic.ParsePeriodType(pj.Cycle)
		if !ok {
			return cfg, fmt.Errorf("unknown cycle %q", pj.Cycle)
		}
		cfg.Type = pt
	}

	if pj.FiscalYearStart != 0 {
		if pj.FiscalYearStart < 1 || pj.FiscalYearStart > 12 {
			return cfg, fmt.Errorf("fiscal_year_start %d: %w", pj.FiscalYearStart, generic.ErrMonthOutOfRange)
		}
		cfg.FiscalYearStartMonth = time.Month(pj.FiscalYearStart)
	} else if cfg.Type == generic.PeriodFiscalYear {
		cfg.FiscalYearStartMonth = time.January
	}

	if pj.AnchorDate != "" {
		t, err := time.Parse("2006-01-02", pj.AnchorDate)
		if err != nil {
			return cfg, fmt.Errorf("anchor_date %q: %w", pj.AnchorDate, err)
		}
		anchor := generic.NewTimePoint(t.Year(), t.Month(), t.Day())
		cfg.AnchorDate = &anchor
	}
	return cfg, nil
}

// ToJSON converts a Plan back to its definition.
func (f *PlanFactory) ToJSON(plan *billing.Plan) PlanJSON {
	pj := PlanJSON{
		ID:              plan.ID,
		Name:            plan.Name,
		Rule:            plan.Rule,
		Amount:          plan.Amount.StringFixed(2),
		Currency:        plan.Currency,
		Cycle:           string(plan.Cycle.Type),
		FiscalYearStart: int(plan.Cycle.FiscalYearStartMonth),
		RollForward:     plan.RollForward,
	}
	if plan.Cycle.AnchorDate != nil {
		pj.AnchorDate = plan.Cycle.AnchorDate.Time.Format("2006-01-02")
	}
	return pj
}
