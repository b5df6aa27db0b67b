package registry

import (
	"context"
	"sort"
	"sync"

	"bioremcore/internal/pipeline"
)

// Memory keeps run reports in process memory. Reports are copied on the
// way in and out so callers cannot mutate stored state.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]pipeline.RunReport
}

var _ Registry = (*Memory)(nil)

// NewMemory returns an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]pipeline.RunReport)}
}

// Record stores the report, replacing any previous report with the same id.
func (m *Memory) Record(_ context.Context, report pipeline.RunReport) error {
	if report.ID == "" {
		return errEmptyRunID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[report.ID] = cloneReport(report)
	return nil
}

// Get returns the report recorded under id.
func (m *Memory) Get(_ context.Context, id string) (pipeline.RunReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	report, ok := m.runs[id]
	if !ok {
		return pipeline.RunReport{}, NotFoundError{ID: id}
	}
	return cloneReport(report), nil
}

// List returns all reports ordered by start time, then id.
func (m *Memory) List(_ context.Context) ([]pipeline.RunReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]pipeline.RunReport, 0, len(m.runs))
	for _, report := range m.runs {
		out = append(out, cloneReport(report))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory registry.
func (m *Memory) Close() error { return nil }

func cloneReport(report pipeline.RunReport) pipeline.RunReport {
	out := report
	if report.Outcomes != nil {
		out.Outcomes = make(map[pipeline.Source]pipeline.Outcome, len(report.Outcomes))
		for src, outcome := range report.Outcomes {
			out.Outcomes[src] = outcome
		}
	}
	return out
}
