// Package storage defines the persistence port for the appointment list and
// its file, database and in-memory implementations.
package storage

import (
	"context"

	"github.com/starford/apptcal/internal/models"
)

// Provider loads and saves the full appointment list in one call.
type Provider interface {
	// Load returns every stored appointment in display order. Records that
	// cannot be decoded are skipped and logged by the implementation.
	Load(ctx context.Context) ([]models.Appointment, error)
	// Save replaces the stored list with appts.
	Save(ctx context.Context, appts []models.Appointment) error
}
