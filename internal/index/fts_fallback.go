//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on appointments.title.
	return nil
}

func ftsInsert(_ *sql.Tx, _ int, _ string) error { return nil }

func ftsClear(_ *sql.Tx) error { return nil }

// Search performs a case-insensitive substring match on titles (fallback when
// FTS5 is not compiled in). Results keep list order.
func (db *DB) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT position, title, date, start_time, end_time
		FROM appointments
		WHERE title LIKE ?
		ORDER BY position
		LIMIT ?
	`, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
