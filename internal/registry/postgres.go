package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver

	"bioremcore/internal/pipeline"
)

const (
	postgresDriver = "pgx"
	defaultDSN     = "postgres://localhost/bioremcore?sslmode=disable"
)

// Postgres persists run reports to a runs table with a JSONB payload.
type Postgres struct {
	db *sql.DB
}

var _ Registry = (*Postgres)(nil)

// NewPostgres connects to dsn, pings it, and ensures the runs table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	open := sqlOpen
	openMu.Unlock()
	db, err := open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		report JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Record upserts the report under its run id.
func (p *Postgres) Record(ctx context.Context, report pipeline.RunReport) error {
	if report.ID == "" {
		return errEmptyRunID
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO runs (id, started_at, report) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET started_at = EXCLUDED.started_at, report = EXCLUDED.report`,
		report.ID, report.StartedAt.UTC(), payload)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the report recorded under id.
func (p *Postgres) Get(ctx context.Context, id string) (pipeline.RunReport, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.RunReport{}, NotFoundError{ID: id}
	}
	if err != nil {
		return pipeline.RunReport{}, fmt.Errorf("select run: %w", err)
	}
	return decodeReport(payload)
}

// List returns all reports ordered by start time, then id.
func (p *Postgres) List(ctx context.Context) ([]pipeline.RunReport, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT report FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []pipeline.RunReport
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		report, err := decodeReport(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (p *Postgres) Close() error { return p.db.Close() }

// DB exposes the underlying handle for integration checks.
func (p *Postgres) DB() *sql.DB { return p.db }
