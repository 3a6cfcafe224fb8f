package index

import "github.com/starford/apptcal/internal/models"

// AppointmentIndex defines the read-side operations served from SQLite.
// Consumers depend on this interface rather than *DB so handlers can be
// tested without a database.
type AppointmentIndex interface {
	Rebuild(appts []models.Appointment) error
	Checksum() (string, error)
	Count() (int, error)
	Search(query string, limit int) ([]Hit, error)
	Between(from, to models.Date) ([]Hit, error)
	Close() error
}

// Verify *DB satisfies AppointmentIndex at compile time.
var _ AppointmentIndex = (*DB)(nil)
