// Package pipeline turns raw identifier submissions into persisted,
// reference-enriched result tables. A Pipeline runs one source at a time;
// the orchestrator entrypoint fans the same input across every source.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bioremcore/internal/artifact"
	"bioremcore/internal/ingest"
	"bioremcore/internal/observe"
	"bioremcore/internal/refstore"
	"bioremcore/pkg/processor"
	"bioremcore/pkg/table"
)

// Clock supplies timestamps. Swap it in tests for determinism.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// StoreOpener opens the artifact store that receives outputs under dir.
type StoreOpener func(ctx context.Context, dir string) (artifact.Store, error)

// Pipeline executes single-source enrichments against a reference catalog.
type Pipeline struct {
	catalog    refstore.Catalog
	openStore  StoreOpener
	processors *processor.Registry
	recorder   ReportRecorder
	logger     observe.Logger
	metrics    observe.MetricsRecorder
	tracer     observe.Tracer
	clock      Clock
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l observe.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.MetricsRecorder) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tr observe.Tracer) Option {
	return func(p *Pipeline) {
		if tr != nil {
			p.tracer = tr
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithStoreOpener overrides how output stores are opened.
func WithStoreOpener(open StoreOpener) Option {
	return func(p *Pipeline) {
		if open != nil {
			p.openStore = open
		}
	}
}

// WithProcessors sets the processor registry applied after enrichment.
func WithProcessors(reg *processor.Registry) Option {
	return func(p *Pipeline) {
		if reg != nil {
			p.processors = reg
		}
	}
}

// WithRecorder sets the recorder that receives finished run reports.
func WithRecorder(r ReportRecorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// New constructs a Pipeline over catalog. Defaults: filesystem-or-env
// artifact store, no-op observability, wall clock, empty processor set.
func New(catalog refstore.Catalog, opts ...Option) *Pipeline {
	p := &Pipeline{
		catalog:    catalog,
		openStore:  artifact.Open,
		processors: processor.NewRegistry(),
		logger:     observe.NopLogger{},
		metrics:    observe.NopMetrics{},
		tracer:     observe.NopTracer{},
		clock:      ClockFunc(time.Now),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunSpec describes one single-source enrichment request.
type RunSpec struct {
	Source            Source
	InputPath         string
	ReferencePath     string // optional; empty resolves via the catalog
	CoreReferencePath string // optional; two-stage sources only
	OutputDir         string
	OutputName        string // optional; empty uses the source default
	Separator         rune   // optional; zero uses the default `;`
	Timestamp         bool   // append _YYYYMMDD_HHMMSS before the extension
	NormalizeTypes    bool
}

// Run executes one source end to end: read and parse the input, load the
// reference fresh, join, optionally normalize, apply registered processors,
// and persist the delimited output. The input existence check precedes any
// reference load. On failure the returned outcome carries the categorized
// error alongside the error itself.
func (p *Pipeline) Run(ctx context.Context, spec RunSpec) (Outcome, error) {
	op := "enrich_" + string(spec.Source)
	started := p.clock.Now()
	ctx, span := p.tracer.Start(ctx, op)
	outcome, err := p.run(ctx, spec)
	span.End(err)
	p.metrics.Observe(ctx, op, err == nil, p.clock.Now().Sub(started))
	return outcome, err
}

func (p *Pipeline) run(ctx context.Context, spec RunSpec) (Outcome, error) {
	srcSpec, ok := sources[spec.Source]
	if !ok {
		return p.fail(spec.Source, fmt.Errorf("pipeline: unknown source %q", spec.Source))
	}
	if _, err := os.Stat(spec.InputPath); err != nil {
		return p.fail(spec.Source, NotFoundError{Path: spec.InputPath})
	}
	raw, err := os.ReadFile(spec.InputPath)
	if err != nil {
		return p.fail(spec.Source, ProcessingError{Stage: "read input", Err: err})
	}
	parsed, err := ingest.Parse(raw)
	if err != nil {
		return p.fail(spec.Source, ProcessingError{Stage: "parse input", Err: err})
	}
	p.logger.Debug("input parsed", "source", spec.Source, "rows", parsed.Len())

	left := parsed
	if srcSpec.twoStage {
		staged, err := p.enrich(parsed, SourceCore, spec.CoreReferencePath, spec.Separator)
		if err != nil {
			return p.fail(spec.Source, ProcessingError{Stage: string(SourceCore) + " stage", Err: err})
		}
		left = staged
	}
	merged, err := p.enrich(left, spec.Source, spec.ReferencePath, spec.Separator)
	if err != nil {
		return p.fail(spec.Source, err)
	}
	p.logger.Debug("reference joined", "source", spec.Source, "rows", merged.Len())

	if spec.NormalizeTypes {
		merged, err = table.Normalize(merged, srcSpec.categorical, srcSpec.numericPrefix)
		if err != nil {
			return p.fail(spec.Source, err)
		}
	}
	for _, proc := range p.processors.Processors() {
		merged, err = proc.Process(ctx, merged)
		if err != nil {
			return p.fail(spec.Source, ProcessingError{Stage: "processor " + proc.Name(), Err: err})
		}
	}

	name := spec.OutputName
	if name == "" {
		name = srcSpec.defaultName
	}
	if spec.Timestamp {
		name = stampName(name, p.clock.Now())
	}
	info, err := p.persist(ctx, spec.OutputDir, name, merged, p.separator(spec.Separator))
	if err != nil {
		return p.fail(spec.Source, err)
	}
	p.logger.Info("source enriched", "source", spec.Source, "rows", merged.Len(), "output", info.Location)
	return Outcome{
		Source:     spec.Source,
		Status:     StatusCompleted,
		OutputPath: info.Location,
		OutputName: name,
		Rows:       merged.Len(),
		Checksum:   info.ETag,
	}, nil
}

// enrich loads the source reference, fresh on every call, and joins it onto
// left. Reference path resolution falls back to the catalog.
func (p *Pipeline) enrich(left *table.Table, src Source, refPath string, sep rune) (*table.Table, error) {
	var (
		ref *table.Table
		err error
	)
	if refPath != "" {
		ref, err = refstore.Load(refPath, p.separator(sep))
	} else {
		ref, err = p.catalog.Load(string(src))
	}
	if err != nil {
		return nil, err
	}
	return table.Merge(left, ref, sources[src].key)
}

func (p *Pipeline) persist(ctx context.Context, dir, name string, tab *table.Table, sep rune) (artifact.Info, error) {
	store, err := p.openStore(ctx, dir)
	if err != nil {
		return artifact.Info{}, PersistenceError{Target: dir, Err: err}
	}
	var buf bytes.Buffer
	if err := tab.WriteDelimited(&buf, sep); err != nil {
		return artifact.Info{}, PersistenceError{Target: name, Err: err}
	}
	info, err := store.Put(ctx, name, &buf)
	if err != nil {
		return artifact.Info{}, PersistenceError{Target: name, Err: err}
	}
	return info, nil
}

func (p *Pipeline) fail(src Source, err error) (Outcome, error) {
	outcome := Outcome{
		Source:   src,
		Status:   StatusFailed,
		Category: Categorize(err),
		Error:    err.Error(),
	}
	p.logger.Warn("source enrichment failed", "source", src, "category", outcome.Category, "error", err)
	return outcome, err
}

func (p *Pipeline) separator(sep rune) rune {
	if sep == 0 {
		return refstore.DefaultSeparator
	}
	return sep
}

// stampName inserts the timestamp before the extension:
// core_results.csv becomes core_results_20060102_150405.csv.
func stampName(name string, at time.Time) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + at.Format("20060102_150405") + ext
}
