package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/parser"
)

// DefaultFileName is used when no path is configured.
const DefaultFileName = "saved_appointments.txt"

// File implements Provider backed by a flat text file.
type File struct {
	path   string // absolute
	logger *slog.Logger
}

// NewFile creates a File provider for path. The file itself does not need to
// exist; it is created on the first Save.
func NewFile(path string, logger *slog.Logger) (*File, error) {
	if path == "" {
		path = DefaultFileName
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: path is a directory: %s", abs)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: abs, logger: logger}, nil
}

// Path returns the absolute path of the backing file.
func (f *File) Path() string {
	return f.path
}

// Load reads and decodes the file. A missing file is an empty list.
func (f *File) Load(_ context.Context) ([]models.Appointment, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Info("appointment file not found, starting empty", slog.String("path", f.path))
			return []models.Appointment{}, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	res := parser.Parse(data)
	for _, s := range res.Skipped {
		f.logger.Warn("skipping invalid entry",
			slog.String("path", f.path),
			slog.Int("line", s.Line),
			slog.String("text", s.Text),
			slog.String("error", s.Err.Error()))
	}
	return res.Appointments, nil
}

// Save atomically replaces the file contents: tmp file → fsync → rename.
func (f *File) Save(_ context.Context, appts []models.Appointment) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".apptcal-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(parser.Format(appts)); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
