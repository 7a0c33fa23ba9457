/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for calendar frontends

ROUTE GROUPS:
  /api/health           Liveness
  /api/rules/*          Named rules and evaluation
  /api/date-of-month    Nth weekday resolution
  /api/holidays*        Holiday calendar and iCalendar feed
  /api/billing/*        Billing plans and charges
  /                     Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are read-only except
  materialization, which only rewrites derived data.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Rule routes
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Get("/{name}", h.GetRule)
			r.Get("/{name}/dates", h.RuleDates)
			r.Get("/{name}/includes", h.RuleIncludes)
		})
		r.Get("/date-of-month", h.DateOfMonth)

		// Holiday routes
		r.Get("/holidays.ics", h.HolidayFeed)
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/materialize", h.MaterializeHolidays)
		})

		// Billing routes
		r.Route("/billing/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Get("/{id}/charges", h.PlanCharges)
			r.Get("/{id}/cycle", h.PlanCycle)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Recurrence Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Recurrence Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/rules">/api/rules</a> - List named rules</li>
<li><a href="/api/holidays">/api/holidays</a> - Holidays of the current year</li>
<li><a href="/api/holidays.ics">/api/holidays.ics</a> - iCalendar feed</li>
<li><a href="/api/billing/plans">/api/billing/plans</a> - Billing plans</li>
</ul>
</body>
</html>`))
	})

	return r
}
