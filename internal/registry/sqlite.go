package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"bioremcore/internal/pipeline"
)

// SQLite persists run reports to a single runs table as JSON rows.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Registry = (*SQLite)(nil)

// NewSQLite opens, creating if needed, a SQLite-backed registry at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "bioremcore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		report BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Record upserts the report under its run id.
func (s *SQLite) Record(ctx context.Context, report pipeline.RunReport) error {
	if report.ID == "" {
		return errEmptyRunID
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO runs (id, started_at, report) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, report = excluded.report`,
		report.ID, report.StartedAt.UTC().Format(time.RFC3339Nano), payload)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Get returns the report recorded under id.
func (s *SQLite) Get(ctx context.Context, id string) (pipeline.RunReport, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.RunReport{}, NotFoundError{ID: id}
	}
	if err != nil {
		return pipeline.RunReport{}, fmt.Errorf("select run: %w", err)
	}
	return decodeReport(payload)
}

// List returns all reports ordered by start time, then id.
func (s *SQLite) List(ctx context.Context) ([]pipeline.RunReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT report FROM runs ORDER BY started_at, id`)
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
func (s *SQLite) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func decodeReport(payload []byte) (pipeline.RunReport, error) {
	var report pipeline.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return pipeline.RunReport{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}
