package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the API router. A nil limiter disables booking rate
// limiting.
func NewRouter(h *BookingHandler, limiter *RateLimiter, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // access log
	r.Use(CORS(corsOrigins))       // embeddable widget

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.GetConfig)

		r.Get("/availability", h.GetAvailability)
		r.Get("/availability/week", h.GetWeeklyAvailability)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.With(func(next http.Handler) http.Handler {
				if limiter == nil {
					return next
				}
				return limiter.Limit(next)
			}).Post("/", h.CreateBooking)
		})

		r.Get("/blackouts", h.GetBlackouts)
		r.Patch("/blackouts", h.SetBlackout)
	})

	return r
}
