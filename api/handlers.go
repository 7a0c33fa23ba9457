/*
handlers.go - HTTP API handlers for the recurrence engine

PURPOSE:
  Exposes rule evaluation, holiday calendars and billing schedules via a
  REST API. Handles HTTP request/response and JSON serialization, and
  delegates to the domain packages.

ENDPOINTS:
  Rules:
    GET    /api/rules                      List registered rules
    GET    /api/rules/{name}               Describe one rule
    GET    /api/rules/{name}/dates         Dates in [from, to) the rule includes
    GET    /api/rules/{name}/includes      Does the rule include ?date
    GET    /api/date-of-month              Resolve the nth weekday of a month

  Holidays:
    GET    /api/holidays                   Holidays of ?year (materialized on demand)
    POST   /api/holidays/materialize       Recompute and store years
    GET    /api/holidays.ics               iCalendar feed of ?year

  Billing:
    GET    /api/billing/plans              List configured plans
    GET    /api/billing/plans/{id}/charges Charges in [from, to)
    GET    /api/billing/plans/{id}/cycle   Billing cycle containing ?date

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed parameters and generic domain errors
  - 404: Unknown rule or plan
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/recurrence-engine/billing"
	"github.com/warp/recurrence-engine/factory"
	"github.com/warp/recurrence-engine/generic"
	"github.com/warp/recurrence-engine/holiday"
	"github.com/warp/recurrence-engine/temporal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Registry       *factory.Registry
	PlanFactory    *factory.PlanFactory
	Calendar       *holiday.Calendar
	MaxRangeDays   int
	MaxRangePoints int
	Logger         *slog.Logger

	mu    sync.RWMutex
	plans map[string]*billing.Plan
}

// NewHandler creates a handler serving the US federal calendar from store.
func NewHandler(store generic.HolidayStore, registry *factory.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Registry:       registry,
		PlanFactory:    factory.NewPlanFactory(registry),
		Calendar:       holiday.NewUSFederal(store, logger),
		MaxRangeDays:   3660,
		MaxRangePoints: 100_000,
		Logger:         logger,
		plans:          make(map[string]*billing.Plan),
	}
}

// LoadPlans builds plans from their definitions. Any invalid plan aborts the load.
func (h *Handler) LoadPlans(defs []factory.PlanJSON) error {
	plans := make(map[string]*billing.Plan, len(defs))
	for _, def := range defs {
		plan, err := h.PlanFactory.Build(def)
		if err != nil {
			return err
		}
		plans[plan.ID] = plan
	}
	h.mu.Lock()
	h.plans = plans
	h.mu.Unlock()
	h.Logger.Info("plans loaded", "count", len(plans))
	return nil
}

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns all registered rules.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := h.Registry.List()
	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dtos[i] = RuleDTO{Name: rule.Name, Description: rule.Description}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": dtos})
}

// GetRule describes one rule.
// GET /api/rules/{name}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := h.lookupRule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        rule.Name,
		"description": rule.Description,
		"expression":  temporal.Describe(rule.Expression),
	})
}

// RuleDates lists the dates a rule includes.
// GET /api/rules/{name}/dates?from=2026-01-01&to=2027-01-01[&step=24h]
func (h *Handler) RuleDates(w http.ResponseWriter, r *http.Request) {
	rule, ok := h.lookupRule(w, r)
	if !ok {
		return
	}

	rng, err := h.rangeFromQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	ctx := r.Context()
	dates := make([]string, 0)
	for date := range temporal.DatesIn(rule.Expression, rng) {
		if ctx.Err() != nil {
			return
		}
		dates = append(dates, formatDate(date))
	}

	writeJSON(w, http.StatusOK, RuleDatesResponse{
		Rule:  rule.Name,
		From:  formatDate(rng.Start()),
		To:    formatDate(rng.End()),
		Step:  rng.Step().String(),
		Count: len(dates),
		Dates: dates,
	})
}

// RuleIncludes evaluates a rule against one date.
// GET /api/rules/{name}/includes?date=2026-11-26
func (h *Handler) RuleIncludes(w http.ResponseWriter, r *http.Request) {
	rule, ok := h.lookupRule(w, r)
	if !ok {
		return
	}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	writeJSON(w, http.StatusOK, IncludesResponse{
		Rule:     rule.Name,
		Date:     formatDate(date),
		Includes: rule.Expression.Includes(date),
	})
}

// DateOfMonth resolves the nth weekday of a month.
// GET /api/date-of-month?week=2&weekday=tuesday&month=1&year=2010
func (h *Handler) DateOfMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	week, err1 := strconv.Atoi(q.Get("week"))
	month, err2 := strconv.Atoi(q.Get("month"))
	year, err3 := strconv.Atoi(q.Get("year"))
	if err := errors.Join(err1, err2, err3); err != nil {
		writeError(w, http.StatusBadRequest, "week, month and year must be integers", err)
		return
	}
	weekday, err := parseWeekday(q.Get("weekday"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid weekday", err)
		return
	}

	date, err := generic.DateOfMonth(week, weekday, time.Month(month), year)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DateOfMonthResponse{
		Week:    week,
		Weekday: weekday.String(),
		Month:   month,
		Year:    year,
		Date:    formatDate(date),
	})
}

func (h *Handler) lookupRule(w http.ResponseWriter, r *http.Request) (factory.NamedRule, bool) {
	name := chi.URLParam(r, "name")
	rule, err := h.Registry.Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Rule not found", err)
		return factory.NamedRule{}, false
	}
	return rule, true
}

// rangeFromQuery reads from, to and the optional step, and enforces
// MaxRangeDays on the span and MaxRangePoints on the number of steps.
func (h *Handler) rangeFromQuery(r *http.Request) (generic.DateRange, error) {
	q := r.URL.Query()

	from, err := parseDate(q.Get("from"))
	if err != nil {
		return generic.DateRange{}, fmt.Errorf("%w: from: %w", errBadQuery, err)
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		return generic.DateRange{}, fmt.Errorf("%w: to: %w", errBadQuery, err)
	}

	rng, err := generic.NewDateRangeUntil(from, to)
	if err != nil {
		return generic.DateRange{}, err
	}
	if h.MaxRangeDays > 0 && rng.Length() > time.Duration(h.MaxRangeDays)*generic.Day {
		return generic.DateRange{}, fmt.Errorf("%w: range exceeds %d days", errBadQuery, h.MaxRangeDays)
	}

	if s := q.Get("step"); s != "" {
		step, err := time.ParseDuration(s)
		if err != nil {
			return generic.DateRange{}, fmt.Errorf("%w: step: %w", errBadQuery, err)
		}
		if rng, err = rng.WithStep(step); err != nil {
			return generic.DateRange{}, err
		}
	}
	if h.MaxRangePoints > 0 && rng.Count() > h.MaxRangePoints {
		return generic.DateRange{}, fmt.Errorf("%w: step %s yields more than %d dates", errBadQuery, rng.Step(), h.MaxRangePoints)
	}
	return rng, nil
}

var errBadQuery = errors.New("bad query")

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holidays of a year.
// GET /api/holidays?year=2026
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := yearFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	holidays, err := h.Calendar.Load(r.Context(), year)
	if err != nil {
		h.Logger.Error("load holidays failed", "year", year, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"calendar_id": h.Calendar.ID,
		"year":        year,
		"holidays":    toHolidayDTOs(holidays),
	})
}

// MaterializeHolidays recomputes and stores one or more years.
// POST /api/holidays/materialize
func (h *Handler) MaterializeHolidays(w http.ResponseWriter, r *http.Request) {
	var req MaterializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year <= 0 {
		writeError(w, http.StatusBadRequest, "year is required", nil)
		return
	}
	if req.Years <= 0 {
		req.Years = 1
	}
	if req.Years > 50 {
		writeError(w, http.StatusBadRequest, "years must be at most 50", nil)
		return
	}

	resp := MaterializeResponse{CalendarID: h.Calendar.ID, Written: make(map[int]int, req.Years)}
	for year := req.Year; year < req.Year+req.Years; year++ {
		n, err := h.Calendar.Materialize(r.Context(), year)
		if err != nil {
			h.Logger.Error("materialize failed", "year", year, "err", err)
			writeError(w, http.StatusInternalServerError, "Failed to materialize holidays", err)
			return
		}
		resp.Written[year] = n
	}

	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// ListPlans returns the configured plans.
// GET /api/billing/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dtos := make([]PlanDTO, 0, len(h.plans))
	for _, p := range h.plans {
		dtos = append(dtos, PlanDTO{
			ID:          p.ID,
			Name:        p.Name,
			Rule:        p.Rule,
			Schedule:    temporal.Describe(p.Schedule),
			Amount:      p.Amount.StringFixed(2),
			Currency:    p.Currency,
			Cycle:       string(p.Cycle.Type),
			RollForward: p.RollForward,
		})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].ID < dtos[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"plans": dtos})
}

// PlanCharges lists charges in a range.
// GET /api/billing/plans/{id}/charges?from=2026-01-01&to=2026-07-01
func (h *Handler) PlanCharges(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}

	rng, err := h.rangeFromQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	charges := plan.Charges(rng, h.Calendar)
	writeJSON(w, http.StatusOK, ChargesResponse{
		PlanID:  plan.ID,
		From:    formatDate(rng.Start()),
		To:      formatDate(rng.End()),
		Charges: toChargeDTOs(charges),
		Total:   billing.Total(charges).StringFixed(2),
	})
}

// PlanCycle returns the billing cycle containing a date (default today).
// GET /api/billing/plans/{id}/cycle?date=2026-05-12
func (h *Handler) PlanCycle(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookupPlan(w, r)
	if !ok {
		return
	}

	date := generic.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		if date, err = parseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	cycle, err := plan.CycleCharges(date, h.Calendar)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChargesResponse{
		PlanID:  plan.ID,
		From:    formatDate(cycle.Period.Start),
		To:      formatDate(cycle.Period.End),
		Charges: toChargeDTOs(cycle.Charges),
		Total:   cycle.Total.StringFixed(2),
	})
}

func (h *Handler) lookupPlan(w http.ResponseWriter, r *http.Request) (*billing.Plan, bool) {
	id := chi.URLParam(r, "id")
	h.mu.RLock()
	plan, ok := h.plans[id]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Plan not found", fmt.Errorf("plan %q", id))
		return nil, false
	}
	return plan, true
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s string) (generic.TimePoint, error) {
	if s == "" {
		return generic.TimePoint{}, errors.New("date is required")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return generic.TimePoint{}, err
	}
	return generic.FromTime(t)
}

func parseWeekday(s string) (time.Weekday, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Weekday(n), nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(s, wd.String()) || strings.EqualFold(s, wd.String()[:3]) {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func yearFromQuery(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return generic.Today().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if year < 1 || year > 9999 {
		return 0, fmt.Errorf("year %d out of range", year)
	}
	return year, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError answers 400 for caller mistakes and 500 for anything else.
func writeDomainError(w http.ResponseWriter, err error) {
	if generic.IsDomainError(err) || errors.Is(err, errBadQuery) {
		writeError(w, http.StatusBadRequest, "Invalid input", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error", err)
}
