package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/apptcal/internal/checksum"
	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/parser"
)

const checksumKey = "checksum"

// Hit is one indexed appointment together with its list position.
type Hit struct {
	Position    int
	Appointment models.Appointment
}

// Rebuild replaces the whole index with appts inside one transaction and
// records their checksum.
func (db *DB) Rebuild(appts []models.Appointment) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM appointments`); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	if len(appts) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO appointments (position, title, date, start_time, end_time) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare insert: %w", err)
		}
		defer stmt.Close()
		for i, a := range appts {
			if _, err := stmt.Exec(i, a.Title, a.Date.String(), a.Start.String(), a.End.String()); err != nil {
				return fmt.Errorf("index: insert appointment: %w", err)
			}
			if err := ftsInsert(tx, i, a.Title); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, checksumKey, checksum.Of(appts)); err != nil {
		return fmt.Errorf("index: store checksum: %w", err)
	}

	return tx.Commit()
}

// Checksum returns the checksum recorded by the last Rebuild, or "" if the
// index has never been built.
func (db *DB) Checksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, checksumKey).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// Count returns the number of indexed appointments.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM appointments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Between returns appointments whose date lies in [from, to], ordered by date
// and start time. Entries with equal keys keep list order.
func (db *DB) Between(from, to models.Date) ([]Hit, error) {
	rows, err := db.conn.Query(`
		SELECT position, title, date, start_time, end_time
		FROM appointments
		WHERE date BETWEEN ? AND ?
		ORDER BY date, start_time, position
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("index: between: %w", err)
	}
	return scanHits(rows)
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	defer rows.Close()

	out := []Hit{}
	for rows.Next() {
		var (
			pos                     int
			title, date, start, end string
		)
		if err := rows.Scan(&pos, &title, &date, &start, &end); err != nil {
			return nil, err
		}
		a, err := parser.ParseFields(title, date, start, end)
		if err != nil {
			return nil, fmt.Errorf("index: corrupt row %d: %w", pos, err)
		}
		out = append(out, Hit{Position: pos, Appointment: a})
	}
	return out, rows.Err()
}
