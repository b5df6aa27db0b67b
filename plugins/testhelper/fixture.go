// Package testhelper hosts plugin fixture builders that assemble enrichment
// result tables without tripping the import restrictions enforced by the API
// boundary guards.
package testhelper

import "bioremcore/pkg/table"

// SampleColumn is the leading column every parsed submission carries into a
// joined result.
const SampleColumn = "sample"

// TableFixtureConfig describes an arbitrary result table used in plugin tests.
type TableFixtureConfig struct {
	Columns []string
	Rows    [][]string
}

// Table builds a table from the provided config. Panics if a row does not
// match the column count so malformed fixtures fail fast.
func Table(cfg TableFixtureConfig) *table.Table {
	t := table.New(cfg.Columns...)
	for _, row := range cfg.Rows {
		if err := t.AppendRow(row...); err != nil {
			panic(err)
		}
	}
	return t
}

// SampleFixtureConfig describes one parsed sample and the annotation rows its
// identifiers joined to.
type SampleFixtureConfig struct {
	Sample string
	Rows   [][]string
}

// EnrichmentFixtureConfig describes a joined result: the annotation columns
// that follow the sample column, and the per-sample rows in submission order.
type EnrichmentFixtureConfig struct {
	Columns []string
	Samples []SampleFixtureConfig
}

// Enrichment builds a result table shaped like the join output plugins see:
// a sample column followed by the configured annotation columns. Panics if a
// row does not match the annotation column count.
func Enrichment(cfg EnrichmentFixtureConfig) *table.Table {
	t := table.New(append([]string{SampleColumn}, cfg.Columns...)...)
	for _, s := range cfg.Samples {
		for _, row := range s.Rows {
			if err := t.AppendRow(append([]string{s.Sample}, row...)...); err != nil {
				panic(err)
			}
		}
	}
	return t
}
