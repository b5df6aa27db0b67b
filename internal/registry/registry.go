// Package registry records orchestrator run reports so past enrichment
// runs stay queryable. Backends: in-memory (default), SQLite, PostgreSQL.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"bioremcore/internal/pipeline"
)

var errEmptyRunID = errors.New("registry: empty run id")

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Environment variables read by Open.
const (
	EnvDriver      = "BIOREMCORE_REGISTRY_DRIVER"      // memory (default), sqlite, postgres
	EnvSQLitePath  = "BIOREMCORE_REGISTRY_SQLITE_PATH" // db file when driver=sqlite
	EnvPostgresDSN = "BIOREMCORE_REGISTRY_POSTGRES_DSN"
)

// Registry stores run reports keyed by run id.
type Registry interface {
	Record(ctx context.Context, report pipeline.RunReport) error
	Get(ctx context.Context, id string) (pipeline.RunReport, error)
	List(ctx context.Context) ([]pipeline.RunReport, error)
	Close() error
}

// Every backend doubles as the pipeline's report recorder.
var (
	_ pipeline.ReportRecorder = (*Memory)(nil)
	_ pipeline.ReportRecorder = (*SQLite)(nil)
	_ pipeline.ReportRecorder = (*Postgres)(nil)
)

// NotFoundError reports a run id with no recorded report.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("registry: run %s not found", e.ID)
}

// Open selects a Registry backend from the environment. Unset or empty
// driver yields the in-memory registry.
func Open(ctx context.Context) (Registry, error) {
	driver := strings.TrimSpace(os.Getenv(EnvDriver))
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv(EnvSQLitePath))
	case DriverPostgres:
		return NewPostgres(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("registry: unknown driver %s", driver)
	}
}

var (
	openMu  sync.Mutex
	sqlOpen = sql.Open
)

// OverrideSQLOpen replaces the sql.Open indirection for tests. It returns a
// restore function.
func OverrideSQLOpen(open func(driver, dsn string) (*sql.DB, error)) (restore func()) {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = open
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
