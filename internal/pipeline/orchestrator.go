package pipeline

import (
	"context"
	"os"

	"github.com/google/uuid"
)

// ReportRecorder receives finished run reports. The run registry satisfies
// this without the pipeline depending on any storage backend.
type ReportRecorder interface {
	Record(ctx context.Context, report RunReport) error
}

// Options configures a multi-source run. Every source receives the same
// input, output directory and flags; reference paths may be overridden per
// source and otherwise resolve via the catalog.
type Options struct {
	InputPath      string
	OutputDir      string
	Separator      rune
	Timestamp      bool
	NormalizeTypes bool
	ReferencePaths map[Source]string
}

// RunAll enriches the shared input against every knowledge base in the
// fixed source order. Per-source failures are recorded on the report and
// never block the remaining sources; only a missing shared input aborts
// before dispatch. The returned report covers every source on normal
// completion.
func (p *Pipeline) RunAll(ctx context.Context, opts Options) (RunReport, error) {
	started := p.clock.Now()
	ctx, span := p.tracer.Start(ctx, "orchestrate_all")
	report := RunReport{
		ID:        uuid.NewString(),
		Input:     opts.InputPath,
		StartedAt: started.UTC(),
		Outcomes:  make(map[Source]Outcome, len(sourceOrder)),
	}
	if _, err := os.Stat(opts.InputPath); err != nil {
		abort := NotFoundError{Path: opts.InputPath}
		p.logger.Error("run aborted", "run", report.ID, "error", abort)
		span.End(abort)
		p.metrics.Observe(ctx, "orchestrate_all", false, p.clock.Now().Sub(started))
		report.FinishedAt = p.clock.Now().UTC()
		return report, abort
	}
	p.logger.Info("run started", "run", report.ID, "input", opts.InputPath)
	for _, src := range sourceOrder {
		outcome, err := p.Run(ctx, RunSpec{
			Source:            src,
			InputPath:         opts.InputPath,
			ReferencePath:     opts.ReferencePaths[src],
			CoreReferencePath: opts.ReferencePaths[SourceCore],
			OutputDir:         opts.OutputDir,
			Separator:         opts.Separator,
			Timestamp:         opts.Timestamp,
			NormalizeTypes:    opts.NormalizeTypes,
		})
		report.Outcomes[src] = outcome
		if err != nil {
			report.Failed++
			continue
		}
		report.Succeeded++
	}
	report.FinishedAt = p.clock.Now().UTC()
	p.logger.Info("run finished", "run", report.ID, "succeeded", report.Succeeded, "failed", report.Failed)
	if p.recorder != nil {
		// Recording is bookkeeping; a registry outage must not fail a run
		// whose outputs are already persisted.
		if err := p.recorder.Record(ctx, report); err != nil {
			p.logger.Warn("run report not recorded", "run", report.ID, "error", err)
		}
	}
	span.End(nil)
	p.metrics.Observe(ctx, "orchestrate_all", report.Failed == 0, p.clock.Now().Sub(started))
	return report, nil
}
