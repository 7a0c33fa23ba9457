/*
registry.go - Named rule registration and lookup

PURPOSE:
  Expression trees are built in Go and never serialized. Everything
  outside the process (config files, HTTP clients, stored holidays)
  refers to a rule by its registry name instead.

HOW IT WORKS:
  1. Domain packages expose constructors for their rules
  2. DefaultRegistry registers them under stable names
  3. Plan definitions and API requests look rules up by name

NAMES:
  us.<slug>        US federal holidays, e.g. "us.thanksgiving"
  us.holidays      any US federal holiday
  weekend          Saturdays and Sundays
  weekdays         Monday through Friday
  first-of-month   day 1 of every month
  mid-month        day 15 of every month
  second-tuesday   2nd Tuesday of every month
  last-friday      last Friday of every month

SEE ALSO:
  - holiday/catalog.go: Holiday rules
  - plan.go: Resolves plan schedules through the registry
*/
package factory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/recurrence-engine/holiday"
	"github.com/warp/recurrence-engine/temporal"
)

var (
	// ErrRuleNotFound is returned when a name is not registered.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleExists is returned when a name is registered twice.
	ErrRuleExists = errors.New("rule already registered")
)

// =============================================================================
// RULE REGISTRY
// =============================================================================

// NamedRule is a registry entry.
type NamedRule struct {
	Name        string
	Description string
	Expression  temporal.Expression
}

// Registry maps names to expressions. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]NamedRule
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]NamedRule)}
}

// Register adds a rule. An empty description is filled from temporal.Describe.
func (r *Registry) Register(name, description string, expr temporal.Expression) error {
	if name == "" {
		return errors.New("rule name is required")
	}
	if expr == nil {
		return fmt.Errorf("rule %q: expression is required", name)
	}
	if description == "" {
		description = temporal.Describe(expr)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[name]; ok {
		return fmt.Errorf("%w: %s", ErrRuleExists, name)
	}
	r.rules[name] = NamedRule{Name: name, Description: description, Expression: expr}
	return nil
}

// Lookup finds a rule by name.
func (r *Registry) Lookup(name string) (NamedRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	if !ok {
		return NamedRule{}, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	return rule, nil
}

// List returns all rules sorted by name.
func (r *Registry) List() []NamedRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]NamedRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultRegistry registers the holiday catalog and common billing schedules.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	federal := holiday.USFederal()
	all := make([]temporal.Expression, 0, len(federal))
	for _, rule := range federal {
		r.mustRegister("us."+rule.Slug, rule.Name, rule.Expression)
		all = append(all, rule.Expression)
	}
	r.mustRegister("us.holidays", "Any US federal holiday", temporal.Sequence(all...))

	r.mustRegister("weekend", "Saturdays and Sundays", holiday.Weekend())
	r.mustRegister("weekdays", "Monday through Friday", holiday.Weekdays())
	r.mustRegister("first-of-month", "1st day of every month", temporal.RangeInYear(1, 1, 12, 1))
	r.mustRegister("mid-month", "15th day of every month", temporal.RangeInYear(1, 15, 12, 15))
	r.mustRegister("second-tuesday", "2nd Tuesday of every month", temporal.DayInMonth(time.Tuesday, 1))
	r.mustRegister("last-friday", "Last Friday of every month", temporal.DayInMonth(time.Friday, -1))
	return r
}

func (r *Registry) mustRegister(name, description string, expr temporal.Expression) {
	if err := r.Register(name, description, expr); err != nil {
		panic(err)
	}
}
