package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/apptcal/internal/models"
	"github.com/starford/apptcal/internal/parser"
)

const pgSchemaSQL = `
CREATE TABLE IF NOT EXISTS appointments (
    position   INTEGER PRIMARY KEY,
    title      TEXT NOT NULL,
    date       TEXT NOT NULL,
    start_time TEXT NOT NULL,
    end_time   TEXT NOT NULL
);`

// Pool is the subset of *pgxpool.Pool used by Postgres.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres implements Provider on a single appointments table. Rows keep the
// list position so display order survives a round trip.
type Postgres struct {
	pool   Pool
	logger *slog.Logger
}

// NewPostgres wraps an open pool.
func NewPostgres(pool Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, logger: logger}
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return pool, nil
}

// Migrate creates the appointments table when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchemaSQL); err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// Load reads all rows ordered by position.
func (p *Postgres) Load(ctx context.Context) ([]models.Appointment, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT position, title, date, start_time, end_time FROM appointments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("storage: query appointments: %w", err)
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		var (
			pos                     int
			title, date, start, end string
		)
		if err := rows.Scan(&pos, &title, &date, &start, &end); err != nil {
			return nil, fmt.Errorf("storage: scan appointment: %w", err)
		}
		a, err := parser.ParseFields(title, date, start, end)
		if err != nil {
			p.logger.Warn("skipping invalid entry",
				slog.Int("position", pos),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate appointments: %w", err)
	}
	return out, nil
}

// Save replaces every row in one transaction.
func (p *Postgres) Save(ctx context.Context, appts []models.Appointment) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appointments`); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("storage: clear appointments: %w", err)
	}
	for i, a := range appts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO appointments (position, title, date, start_time, end_time) VALUES ($1, $2, $3, $4, $5)`,
			i, a.Title, a.Date.String(), a.Start.String(), a.End.String()); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("storage: insert appointment %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}
