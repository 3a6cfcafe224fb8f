// Package testutil provides shared test helpers for setting up appointment
// files, services and index databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "apptcal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFile creates a File provider in a temporary directory.
func TestFile(t *testing.T) *storage.File {
	t.Helper()
	f, err := storage.NewFile(filepath.Join(t.TempDir(), storage.DefaultFileName), Logger())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// TestService returns a loaded, file-backed service whose SQLite index is
// kept in sync on every change, the same way the server wires them.
func TestService(t *testing.T) (*appointments.Service, *index.DB, *storage.File) {
	t.Helper()
	file := TestFile(t)
	db := TestDB(t)
	logger := Logger()

	svc := appointments.NewService(file, logger)
	svc.Load(t.Context())
	if err := index.Sync(db, svc, logger); err != nil {
		t.Fatal(err)
	}
	svc.Subscribe(func(appointments.Change) {
		if err := index.Sync(db, svc, logger); err != nil {
			t.Errorf("index sync: %v", err)
		}
	})
	return svc, db, file
}
