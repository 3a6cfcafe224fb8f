package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/apperr"
	"github.com/starford/apptcal/internal/ical"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc      Store
	idx      index.AppointmentIndex
	calendar ical.Options
}

// NewHandler creates a new Handler.
func NewHandler(svc Store, idx index.AppointmentIndex, calendar ical.Options) *Handler {
	return &Handler{svc: svc, idx: idx, calendar: calendar}
}

// pathIndex parses the {index} URL parameter.
func pathIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, false
	}
	return i, true
}

// ListAppointments handles GET /api/appointments.
//
//	@Summary		List appointments in display order
//	@Tags			appointments
//	@Produce		json
//	@Param			date	query		string	false	"Only appointments on this date (YYYY-MM-DD)"
//	@Success		200		{object}	AppointmentListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/appointments [get]
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	var entries []appointments.Entry
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, kindErrorBody(apperr.Kind(err), err))
			return
		}
		entries = h.svc.OnDate(d)
	} else {
		entries = h.svc.Entries()
	}
	writeJSON(w, http.StatusOK, AppointmentListResponse{
		Appointments: entriesToDTO(entries),
		Total:        len(entries),
	})
}

// GetAppointment handles GET /api/appointments/{index}.
//
//	@Summary		Get the appointment at a list position
//	@Tags			appointments
//	@Produce		json
//	@Param			index	path		int	true	"Zero-based list position"
//	@Success		200		{object}	AppointmentDTO
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/appointments/{index} [get]
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	a, ok := h.svc.Get(i)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, toDTO(i, a))
}

// AddAppointment handles POST /api/appointments.
//
//	@Summary		Add an appointment at the end of the list
//	@Tags			appointments
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddAppointmentRequest	true	"Appointment to add"
//	@Success		201		{object}	AppointmentDTO
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/appointments [post]
func (h *Handler) AddAppointment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	e, err := h.svc.Append(r.Context(), appointments.Input{
		Title: req.Title,
		Date:  req.Date,
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		if apperr.IsValidation(err) {
			writeJSON(w, http.StatusBadRequest, kindErrorBody(apperr.Kind(err), err))
		} else {
			slog.Error("add appointment failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/appointments/%d", e.Index))
	writeJSON(w, http.StatusCreated, toDTO(e.Index, e.Appointment))
}

// RemoveAppointment handles DELETE /api/appointments/{index}.
//
//	@Summary		Remove the appointment at a list position
//	@Tags			appointments
//	@Param			index	path	int	true	"Zero-based list position"
//	@Success		204		"Appointment removed"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/appointments/{index} [delete]
func (h *Handler) RemoveAppointment(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	if !h.svc.RemoveAt(r.Context(), i) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Search appointment titles
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.idx.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hitsToDTO(hits)})
}

// Agenda handles GET /api/agenda.
//
//	@Summary		Appointments in a date range, ordered by date and start time
//	@Tags			search
//	@Produce		json
//	@Param			from	query		string	true	"First date (YYYY-MM-DD)"
//	@Param			to		query		string	false	"Last date, inclusive (defaults to from)"
//	@Success		200		{object}	AppointmentListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/agenda [get]
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'from' is required"))
		return
	}
	from, err := models.ParseDate(q.Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, kindErrorBody(apperr.Kind(err), err))
		return
	}
	to := from
	if raw := q.Get("to"); raw != "" {
		if to, err = models.ParseDate(raw); err != nil {
			writeJSON(w, http.StatusBadRequest, kindErrorBody(apperr.Kind(err), err))
			return
		}
	}

	hits, err := h.idx.Between(from, to)
	if err != nil {
		slog.Error("agenda failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, AppointmentListResponse{
		Appointments: hitsToDTO(hits),
		Total:        len(hits),
	})
}

// ExportCalendar handles GET /api/export.ics.
//
//	@Summary		Export all appointments as iCalendar
//	@Tags			export
//	@Produce		text/calendar
//	@Success		200	{string}	string	"iCalendar feed"
//	@Security		BearerAuth
//	@Router			/export.ics [get]
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
	w.WriteHeader(http.StatusOK)
	if err := ical.Write(w, h.svc.List(), h.calendar); err != nil {
		slog.Error("export calendar failed", slog.String("error", err.Error()))
	}
}
