package api

import (
	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/models"
)

// AddAppointmentRequest is the request body for adding an appointment.
type AddAppointmentRequest struct {
	Title string `json:"title" example:"Dentist" validate:"required"`
	Date  string `json:"date" example:"2024-05-01" validate:"required"`
	Start string `json:"start" example:"09:00" validate:"required"`
	End   string `json:"end" example:"09:30" validate:"required"`
}

// AppointmentDTO is one appointment with its list position.
type AppointmentDTO struct {
	Index   int    `json:"index" example:"0" validate:"required"`
	Title   string `json:"title" example:"Dentist" validate:"required"`
	Date    string `json:"date" example:"2024-05-01" validate:"required"`
	Start   string `json:"start" example:"09:00" validate:"required"`
	End     string `json:"end" example:"09:30" validate:"required"`
	Display string `json:"display" example:"Dentist 2024-05-01 09:00 - 09:30" validate:"required"`
}

// AppointmentListResponse wraps appointment listings.
type AppointmentListResponse struct {
	Appointments []AppointmentDTO `json:"appointments" validate:"required"`
	Total        int              `json:"total" example:"1" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []AppointmentDTO `json:"results" validate:"required"`
}

func toDTO(idx int, a models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		Index:   idx,
		Title:   a.Title,
		Date:    a.Date.String(),
		Start:   a.Start.String(),
		End:     a.End.String(),
		Display: a.String(),
	}
}

func entriesToDTO(entries []appointments.Entry) []AppointmentDTO {
	out := make([]AppointmentDTO, len(entries))
	for i, e := range entries {
		out[i] = toDTO(e.Index, e.Appointment)
	}
	return out
}

func hitsToDTO(hits []index.Hit) []AppointmentDTO {
	out := make([]AppointmentDTO, len(hits))
	for i, h := range hits {
		out[i] = toDTO(h.Position, h.Appointment)
	}
	return out
}
