/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. RateLimit:  Per-IP token bucket
  5. CORS:       Cross-origin requests for the scheduling frontend

ROUTE GROUPS:
  /api/shifts/*      Validation, creation, scoped series mutation
  /api/employees/*   Roster management
  /api/timeoff/*     Time-off requests
  /api/tips/*        Gratuity allocation and rebalance

SEE ALSO:
  - handlers.go: Handler implementations
  - ratelimit.go: Per-IP limiter
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RouterOptions tune the transport middleware.
type RouterOptions struct {
	// RateLimitPerSec caps requests per client IP; zero disables limiting.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if opts.RateLimitPerSec > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = int(opts.RateLimitPerSec)
		}
		r.Use(RateLimit(rate.Limit(opts.RateLimitPerSec), burst))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/validate", h.ValidateShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
			r.Get("/{id}/series", h.GetSeriesInfo)
		})

		// Roster routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
		})

		// Time-off routes
		r.Route("/timeoff", func(r chi.Router) {
			r.Get("/", h.ListTimeOff)
			r.Post("/", h.SaveTimeOff)
		})

		// Gratuity routes
		r.Route("/tips", func(r chi.Router) {
			r.Post("/allocate", h.AllocateTips)
			r.Post("/rebalance", h.RebalanceTips)
		})
	})

	return r
}
