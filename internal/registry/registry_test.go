package registry

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bioremcore/internal/pipeline"
)

func sampleReport(id string, started time.Time) pipeline.RunReport {
	return pipeline.RunReport{
		ID:         id,
		Input:      "input.txt",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Outcomes: map[pipeline.Source]pipeline.Outcome{
			pipeline.SourceCore: {
				Source:     pipeline.SourceCore,
				Status:     pipeline.StatusCompleted,
				OutputName: "core_results.csv",
				Rows:       3,
			},
			pipeline.SourcePathway: {
				Source:   pipeline.SourcePathway,
				Status:   pipeline.StatusFailed,
				Category: pipeline.CategoryNotFound,
				Error:    "reference missing",
			},
		},
		Succeeded: 1,
		Failed:    1,
	}
}

func TestOpenSelectsDrivers(t *testing.T) {
	ctx := context.Background()

	t.Run("default is memory", func(t *testing.T) {
		t.Setenv(EnvDriver, "")
		reg, err := Open(ctx)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if _, ok := reg.(*Memory); !ok {
			t.Fatalf("expected memory registry, got %T", reg)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Setenv(EnvDriver, DriverSQLite)
		t.Setenv(EnvSQLitePath, filepath.Join(t.TempDir(), "runs.db"))
		reg, err := Open(ctx)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer func() { _ = reg.Close() }()
		if _, ok := reg.(*SQLite); !ok {
			t.Fatalf("expected sqlite registry, got %T", reg)
		}
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv(EnvDriver, DriverPostgres)
		restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
			return sql.Open("sqlite", filepath.Join(t.TempDir(), "pg.db"))
		})
		defer restore()
		reg, err := Open(ctx)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer func() { _ = reg.Close() }()
		if _, ok := reg.(*Postgres); !ok {
			t.Fatalf("expected postgres registry, got %T", reg)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv(EnvDriver, "ftp")
		if _, err := Open(ctx); err == nil {
			t.Fatal("expected unknown driver error")
		}
	})
}

func TestRegistryContractsAcrossBackends(t *testing.T) {
	ctx := context.Background()
	backends := map[string]func(t *testing.T) Registry{
		"memory": func(t *testing.T) Registry { return NewMemory() },
		"sqlite": func(t *testing.T) Registry {
			reg, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
			if err != nil {
				t.Fatalf("new sqlite: %v", err)
			}
			return reg
		},
	}
	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			reg := build(t)
			defer func() { _ = reg.Close() }()

			base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			second := sampleReport("run-b", base.Add(time.Hour))
			first := sampleReport("run-a", base)
			for _, report := range []pipeline.RunReport{second, first} {
				if err := reg.Record(ctx, report); err != nil {
					t.Fatalf("record %s: %v", report.ID, err)
				}
			}

			got, err := reg.Get(ctx, "run-a")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Succeeded != 1 || got.Failed != 1 || got.Input != "input.txt" {
				t.Fatalf("unexpected report %+v", got)
			}
			if !got.StartedAt.Equal(base) {
				t.Fatalf("expected start %v, got %v", base, got.StartedAt)
			}
			outcome := got.Outcomes[pipeline.SourcePathway]
			if outcome.Category != pipeline.CategoryNotFound {
				t.Fatalf("outcome lost detail: %+v", outcome)
			}

			listed, err := reg.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(listed) != 2 || listed[0].ID != "run-a" || listed[1].ID != "run-b" {
				t.Fatalf("unexpected order: %v", listed)
			}

			var notFound NotFoundError
			if _, err := reg.Get(ctx, "run-z"); !errors.As(err, &notFound) || notFound.ID != "run-z" {
				t.Fatalf("expected NotFoundError, got %v", err)
			}

			if err := reg.Record(ctx, pipeline.RunReport{}); err == nil {
				t.Fatal("expected empty run id rejection")
			}

			updated := sampleReport("run-a", base)
			updated.Failed = 0
			updated.Succeeded = 2
			if err := reg.Record(ctx, updated); err != nil {
				t.Fatalf("re-record: %v", err)
			}
			got, err = reg.Get(ctx, "run-a")
			if err != nil {
				t.Fatalf("get after update: %v", err)
			}
			if got.Succeeded != 2 || got.Failed != 0 {
				t.Fatalf("expected upsert, got %+v", got)
			}
			listed, err = reg.List(ctx)
			if err != nil {
				t.Fatalf("list after update: %v", err)
			}
			if len(listed) != 2 {
				t.Fatalf("upsert duplicated rows: %d", len(listed))
			}
		})
	}
}
