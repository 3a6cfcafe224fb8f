package index

import (
	"log/slog"
	"sync"

	"github.com/starford/apptcal/internal/checksum"
	"github.com/starford/apptcal/internal/models"
)

// Lister is the part of the appointment service the index reads from.
type Lister interface {
	List() []models.Appointment
}

// syncMu orders List → Rebuild across callers so an older snapshot can
// never be committed after a newer one.
var syncMu sync.Mutex

// Sync brings the index up to date with src. It skips the rebuild when the
// stored checksum already matches.
func Sync(db AppointmentIndex, src Lister, logger *slog.Logger) error {
	syncMu.Lock()
	defer syncMu.Unlock()

	appts := src.List()
	want := checksum.Of(appts)

	have, err := db.Checksum()
	if err != nil {
		return err
	}
	if have == want {
		logger.Debug("sync: index up to date", slog.Int("count", len(appts)))
		return nil
	}

	if err := db.Rebuild(appts); err != nil {
		return err
	}
	logger.Debug("sync: index rebuilt", slog.Int("count", len(appts)))
	return nil
}
