/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  domain types (TimePoint, decimal amounts, expressions) from the wire
  contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

DATES:
  Day-granularity values are "YYYY-MM-DD"; anything finer is RFC 3339.
  Amounts are decimal strings with two places.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/recurrence-engine/billing"
	"github.com/warp/recurrence-engine/generic"
)

// =============================================================================
// RULES
// =============================================================================

// RuleDTO represents a registered rule.
type RuleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RuleDatesResponse lists the dates a rule includes in a range.
type RuleDatesResponse struct {
	Rule  string   `json:"rule"`
	From  string   `json:"from"`
	To    string   `json:"to"`
	Step  string   `json:"step"`
	Count int      `json:"count"`
	Dates []string `json:"dates"`
}

// IncludesResponse answers a single-date query.
type IncludesResponse struct {
	Rule     string `json:"rule"`
	Date     string `json:"date"`
	Includes bool   `json:"includes"`
}

// DateOfMonthResponse is the resolved nth weekday.
type DateOfMonthResponse struct {
	Week    int    `json:"week"`
	Weekday string `json:"weekday"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Date    string `json:"date"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendar_id"`
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	Name       string `json:"name"`
	Rule       string `json:"rule"`
}

// MaterializeRequest asks for years [Year, Year+Years).
type MaterializeRequest struct {
	Year  int `json:"year"`
	Years int `json:"years,omitempty"`
}

// MaterializeResponse reports rows written per year.
type MaterializeResponse struct {
	CalendarID string      `json:"calendar_id"`
	Written    map[int]int `json:"written"`
}

// =============================================================================
// BILLING
// =============================================================================

// PlanDTO represents a billing plan.
type PlanDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rule        string `json:"rule"`
	Schedule    string `json:"schedule"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Cycle       string `json:"cycle"`
	RollForward bool   `json:"roll_forward"`
}

// ChargeDTO represents one dated charge.
type ChargeDTO struct {
	Scheduled string `json:"scheduled"`
	Date      string `json:"date"`
	Rolled    bool   `json:"rolled"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// ChargesResponse lists charges in a range or cycle.
type ChargesResponse struct {
	PlanID  string      `json:"plan_id"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Charges []ChargeDTO `json:"charges"`
	Total   string      `json:"total"`
}

// ErrorResponse is returned for all failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func formatDate(tp generic.TimePoint) string {
	if tp.Granularity == generic.GranularityDay {
		return tp.Time.Format("2006-01-02")
	}
	return tp.Time.Format(time.RFC3339)
}

func toHolidayDTOs(holidays []generic.Holiday) []HolidayDTO {
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			ID:         hol.ID,
			CalendarID: hol.CalendarID,
			Date:       formatDate(hol.Date),
			Weekday:    hol.Date.Weekday().String(),
			Name:       hol.Name,
			Rule:       hol.Rule,
		})
	}
	return dtos
}

func toChargeDTOs(charges []billing.Charge) []ChargeDTO {
	dtos := make([]ChargeDTO, 0, len(charges))
	for _, c := range charges {
		dtos = append(dtos, ChargeDTO{
			Scheduled: formatDate(c.Scheduled),
			Date:      formatDate(c.Date),
			Rolled:    c.Rolled(),
			Amount:    c.Amount.StringFixed(2),
			Currency:  c.Currency,
		})
	}
	return dtos
}
