// Package appointments holds the appointment store: an ordered in-memory
// list written through to a storage.Provider after every mutation.
package appointments

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/apptcal/internal/checksum"
	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/storage"
)

// ChangeKind names what happened to the list.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeReloaded ChangeKind = "reloaded"
)

// Change is delivered to subscribers after a successful mutation.
// Index and Appointment are unset for ChangeReloaded.
type Change struct {
	Kind        ChangeKind
	Index       int
	Appointment models.Appointment
	Total       int
}

// ChangeFunc receives changes. It is called without the service lock held
// and may call back into the service.
type ChangeFunc func(Change)

// Entry pairs an appointment with its current position in the list.
type Entry struct {
	Index int `json:"index"`
	models.Appointment
}

// Service owns the ordered appointment list. Insertion order is display
// order. All methods are safe for concurrent use.
type Service struct {
	store  storage.Provider
	logger *slog.Logger

	mu        sync.Mutex
	items     []models.Appointment
	diskSum   string // checksum of what the store last held as far as we know
	listeners []ChangeFunc
}

// NewService creates an empty service. Call Load to populate it.
func NewService(store storage.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		logger:  logger,
		items:   []models.Appointment{},
		diskSum: checksum.Of(nil),
	}
}

// Subscribe registers fn for every subsequent change.
func (s *Service) Subscribe(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load replaces the in-memory list with the store's contents. A store that
// cannot be read leaves the list empty; the failure is logged, not returned.
func (s *Service) Load(ctx context.Context) []models.Appointment {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("load appointments failed", slog.String("error", err.Error()))
		loaded = nil
	}

	s.mu.Lock()
	s.items = append([]models.Appointment{}, loaded...)
	if err == nil {
		s.diskSum = checksum.Of(s.items)
	}
	out := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("appointments loaded", slog.Int("count", len(out)))
	return out
}

// Add validates in, appends the result and persists the list. Validation
// failures wrap one of the apperr sentinels and leave the list unchanged.
// A failed save is logged; the appointment stays in memory.
func (s *Service) Add(ctx context.Context, in Input) (models.Appointment, error) {
	e, err := s.Append(ctx, in)
	return e.Appointment, err
}

// Append is Add that also reports the position the appointment landed at.
func (s *Service) Append(ctx context.Context, in Input) (Entry, error) {
	a, err := in.Appointment()
	if err != nil {
		return Entry{}, err
	}

	s.mu.Lock()
	s.items = append(s.items, a)
	idx := len(s.items) - 1
	_ = s.saveLocked(ctx)
	total := len(s.items)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Change{Kind: ChangeAdded, Index: idx, Appointment: a, Total: total})
	return Entry{Index: idx, Appointment: a}, nil
}

// RemoveAt deletes the appointment at index and persists the list. An index
// outside [0, len) is a no-op and returns false.
func (s *Service) RemoveAt(ctx context.Context, index int) bool {
	_, ok := s.Take(ctx, index)
	return ok
}

// Take is RemoveAt that also returns the appointment it removed.
func (s *Service) Take(ctx context.Context, index int) (models.Appointment, bool) {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return models.Appointment{}, false
	}
	removed := s.items[index]
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	_ = s.saveLocked(ctx)
	total := len(s.items)
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Change{Kind: ChangeRemoved, Index: index, Appointment: removed, Total: total})
	return removed, true
}

// Save writes the full list to the store. The error is logged and returned
// for callers that care; the in-memory list is kept either way.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// Reload re-reads the store and adopts its contents when they differ from
// what was last loaded or saved. It reports whether the list changed.
func (s *Service) Reload(ctx context.Context) bool {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("reload appointments failed", slog.String("error", err.Error()))
		return false
	}
	sum := checksum.Of(loaded)

	s.mu.Lock()
	if sum == s.diskSum {
		s.mu.Unlock()
		return false
	}
	s.items = append([]models.Appointment{}, loaded...)
	s.diskSum = sum
	total := len(s.items)
	listeners := s.listeners
	s.mu.Unlock()

	s.logger.Info("appointments reloaded", slog.Int("count", total))
	notify(listeners, Change{Kind: ChangeReloaded, Total: total})
	return true
}

// List returns a copy of the current list.
func (s *Service) List() []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of appointments.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get returns the appointment at index.
func (s *Service) Get(index int) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return models.Appointment{}, false
	}
	return s.items[index], true
}

// Entries returns the list with positions attached.
func (s *Service) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.items))
	for i, a := range s.items {
		out[i] = Entry{Index: i, Appointment: a}
	}
	return out
}

// OnDate returns the entries falling on d, in list order.
func (s *Service) OnDate(d models.Date) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Entry{}
	for i, a := range s.items {
		if a.Date == d {
			out = append(out, Entry{Index: i, Appointment: a})
		}
	}
	return out
}

func (s *Service) saveLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.items); err != nil {
		s.logger.Error("save appointments failed",
			slog.Int("count", len(s.items)),
			slog.String("error", err.Error()))
		return err
	}
	s.diskSum = checksum.Of(s.items)
	return nil
}

func (s *Service) snapshotLocked() []models.Appointment {
	return append([]models.Appointment{}, s.items...)
}

func notify(listeners []ChangeFunc, c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
