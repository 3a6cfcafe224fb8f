package api

import (
	"context"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/models"
)

// Store is the part of the appointment service the handlers use.
type Store interface {
	Append(ctx context.Context, in appointments.Input) (appointments.Entry, error)
	RemoveAt(ctx context.Context, index int) bool
	Get(index int) (models.Appointment, bool)
	Entries() []appointments.Entry
	OnDate(d models.Date) []appointments.Entry
	List() []models.Appointment
}

// Verify *appointments.Service satisfies Store at compile time.
var _ Store = (*appointments.Service)(nil)
