package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/apptcal/internal/ical"
	"github.com/starford/apptcal/internal/index"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// idx serves search and agenda queries; calendar configures the .ics export.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc Store, idx index.AppointmentIndex, calendar ical.Options, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, idx, calendar)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Appointments.
	r.Get("/appointments", h.ListAppointments)
	r.Post("/appointments", h.AddAppointment)
	r.Get("/appointments/{index}", h.GetAppointment)
	r.Delete("/appointments/{index}", h.RemoveAppointment)

	// Index-backed queries.
	r.Get("/search", h.Search)
	r.Get("/agenda", h.Agenda)

	// Calendar export.
	r.Get("/export.ics", h.ExportCalendar)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
