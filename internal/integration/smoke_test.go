package integration

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"bioremcore/internal/artifact"
	"bioremcore/internal/observe"
	"bioremcore/internal/pipeline"
	"bioremcore/internal/refstore"
	"bioremcore/internal/registry"
)

const submission = ">SampleA\nK00001\nK00002\n>SampleB\nK00001\n"

var references = map[string]string{
	"core.csv":        "ko;gene;cpd\nK00001;adhE;C00084\nK00002;akr;C00469\n",
	"pathway.csv":     "ko;pathway\nK00001;naphthalene_degradation\n",
	"hydrocarbon.csv": "ko;gene;compound\nK00001;adhE;alkane\n",
	"toxicity.csv":    "cpd;smiles;value_oral;label_class\nC00084;CC=O;2.4;high\nC00469;CCO;1.1;low\n",
}

func fixtureDirs(t *testing.T) (dataDir, input, outDir string) {
	t.Helper()
	root := t.TempDir()
	dataDir = filepath.Join(root, "data")
	outDir = filepath.Join(root, "outputs")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	for name, content := range references {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	input = filepath.Join(root, "submission.txt")
	if err := os.WriteFile(input, []byte(submission), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return dataDir, input, outDir
}

// TestIntegrationSmoke exercises one end-to-end enrichment run for each
// supported registry backend and a round trip through each artifact store
// adapter. It intentionally keeps scope tiny so it can act as a fast CI
// health check.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	registryVariants := []struct {
		name string
		open func(t *testing.T) registry.Registry
	}{
		{
			name: "memory-registry",
			open: func(_ *testing.T) registry.Registry { return registry.NewMemory() },
		},
		{
			name: "sqlite-registry",
			open: func(t *testing.T) registry.Registry {
				reg, err := registry.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
				if err != nil {
					t.Fatalf("new sqlite registry: %v", err)
				}
				return reg
			},
		},
	}

	for _, rv := range registryVariants {
		t.Run(rv.name, func(t *testing.T) {
			dataDir, input, outDir := fixtureDirs(t)
			reg := rv.open(t)
			defer func() {
				if err := reg.Close(); err != nil {
					t.Errorf("close registry: %v", err)
				}
			}()

			metricsRecorder := observe.NewExpvarMetricsRecorder("")
			var traceBuffer bytes.Buffer
			tracer := observe.NewJSONTracer(&traceBuffer)
			p := pipeline.New(
				refstore.Catalog{DataDir: dataDir},
				pipeline.WithMetrics(metricsRecorder),
				pipeline.WithTracer(tracer),
				pipeline.WithRecorder(reg),
				pipeline.WithStoreOpener(func(_ context.Context, dir string) (artifact.Store, error) {
					return artifact.NewFilesystem(dir)
				}),
			)

			report, err := p.RunAll(ctx, pipeline.Options{InputPath: input, OutputDir: outDir})
			if err != nil {
				t.Fatalf("run all: %v", err)
			}
			if report.Failed != 0 || report.Succeeded != len(pipeline.Sources()) {
				t.Fatalf("report counts: succeeded=%d failed=%d outcomes=%+v", report.Succeeded, report.Failed, report.Outcomes)
			}
			for src, outcome := range report.Outcomes {
				if outcome.Status != pipeline.StatusCompleted {
					t.Fatalf("source %s not completed: %+v", src, outcome)
				}
				if _, err := os.Stat(outcome.OutputPath); err != nil {
					t.Fatalf("output for %s missing: %v", src, err)
				}
			}

			// The finished report must land in the registry.
			stored, err := reg.List(ctx)
			if err != nil {
				t.Fatalf("list registry: %v", err)
			}
			if len(stored) != 1 || stored[0].ID != report.ID {
				t.Fatalf("expected recorded report %s, got %+v", report.ID, stored)
			}
			fetched, err := reg.Get(ctx, report.ID)
			if err != nil {
				t.Fatalf("get report: %v", err)
			}
			if fetched.Succeeded != report.Succeeded || len(fetched.Outcomes) != len(report.Outcomes) {
				t.Fatalf("stored report diverged: %+v", fetched)
			}

			// Observability exporters captured the run.
			snapshot := metricsRecorder.Snapshot()
			if len(snapshot.Operations) == 0 {
				t.Fatal("expected operation metrics, got empty snapshot")
			}
			if snapshot.Operations["orchestrate_all"].Success == 0 {
				t.Fatalf("expected orchestrate_all success metric: %+v", snapshot.Operations)
			}
			if traceBuffer.Len() == 0 {
				t.Fatal("expected trace exporter to emit spans")
			}
			var foundSpan bool
			for _, entry := range tracer.Entries() {
				if entry.Operation == "orchestrate_all" && entry.Status == "success" {
					foundSpan = true
					break
				}
			}
			if !foundSpan {
				t.Fatalf("expected trace entry for orchestrate_all, entries=%+v", tracer.Entries())
			}
		})
	}

	artifactVariants := []struct {
		name string
		open func(t *testing.T) artifact.Store
	}{
		{
			name: "memory-artifacts",
			open: func(_ *testing.T) artifact.Store { return artifact.NewMemory() },
		},
		{
			name: "filesystem-artifacts",
			open: func(t *testing.T) artifact.Store {
				store, err := artifact.NewFilesystem(t.TempDir())
				if err != nil {
					t.Fatalf("new filesystem store: %v", err)
				}
				return store
			},
		},
		{
			name: "mock-s3-artifacts",
			open: func(_ *testing.T) artifact.Store { return artifact.NewMockS3ForTests() },
		},
	}

	for _, av := range artifactVariants {
		t.Run(av.name, func(t *testing.T) {
			store := av.open(t)
			key := "outputs/core_results.csv"
			payload := []byte("ko;sample;gene\nK00001;SampleA;adhE\n")

			info, err := store.Put(ctx, key, bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Key != key {
				t.Fatalf("unexpected artifact info: %+v", info)
			}
			if info.Size <= 0 {
				t.Fatalf("expected positive artifact size, got %d", info.Size)
			}

			_, rc, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			got, err := io.ReadAll(rc)
			if cerr := rc.Close(); cerr != nil {
				t.Fatalf("close reader: %v", cerr)
			}
			if err != nil {
				t.Fatalf("read payload: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("payload mismatch got=%q want=%q", got, payload)
			}

			if ok, err := store.Delete(ctx, key); err != nil || !ok {
				t.Fatalf("delete: %v ok=%v", err, ok)
			}
		})
	}
}
