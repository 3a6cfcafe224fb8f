package storage

import (
	"context"
	"sync"

	"github.com/starford/apptcal/internal/models"
)

// Memory is an in-process Provider, used by tests and by commands that must
// not touch disk.
type Memory struct {
	mu      sync.Mutex
	data    []models.Appointment
	saves   int
	loadErr error
	saveErr error
}

// NewMemory returns a Memory seeded with initial.
func NewMemory(initial ...models.Appointment) *Memory {
	return &Memory{data: append([]models.Appointment{}, initial...)}
}

// Load returns a copy of the stored list.
func (m *Memory) Load(_ context.Context) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]models.Appointment{}, m.data...), nil
}

// Save stores a copy of appts.
func (m *Memory) Save(_ context.Context, appts []models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]models.Appointment{}, appts...)
	m.saves++
	return nil
}

// Set replaces the stored list without counting a save, simulating an
// external edit.
func (m *Memory) Set(appts []models.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]models.Appointment{}, appts...)
}

// Saves returns the number of successful Save calls.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailLoad makes subsequent Load calls return err (nil clears it).
func (m *Memory) FailLoad(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// FailSave makes subsequent Save calls return err (nil clears it).
func (m *Memory) FailSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}
