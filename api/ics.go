package api

import (
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/warp/recurrence-engine/generic"
)

const icsProductID = "-//warp//recurrence-engine//EN"

// HolidayFeed serves a year of holidays as an iCalendar feed of all-day events.
// GET /api/holidays.ics?year=2026
func (h *Handler) HolidayFeed(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(holidayCalendar(h.Calendar.ID, holidays, time.Now().UTC()).Serialize()))
}

// holidayCalendar builds one VEVENT per holiday. UIDs are the holiday IDs,
// so re-fetching a feed updates events instead of duplicating them.
func holidayCalendar(calendarID string, holidays []generic.Holiday, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(calendarID)

	for _, hol := range holidays {
		id := hol.ID
		if id == "" {
			id = generic.HolidayID(hol.CalendarID, hol.Date, hol.Rule)
		}
		event := cal.AddEvent(id)
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(hol.Date.Time)
		event.SetAllDayEndAt(hol.Date.AddDays(1).Time)
		event.SetSummary(hol.Name)
		event.SetTimeTransparency(ical.TransparencyTransparent)
	}
	return cal
}
