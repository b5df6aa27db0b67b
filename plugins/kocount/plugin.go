// Package kocount ships the built-in per-sample identifier count processor.
package kocount

import (
	"context"
	"strconv"

	"bioremcore/pkg/processor"
	"bioremcore/pkg/table"
)

// Column appended to processed tables.
const Column = "sample_ko_count"

// sampleColumn is the parsed submission column the counts are grouped by.
const sampleColumn = "sample"

// Plugin counts enriched rows per sample and appends the per-row total.
type Plugin struct{}

// New constructs a kocount plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the processor identifier.
func (Plugin) Name() string { return "kocount" }

// Register wires the processor into the registry.
func Register(registry *processor.Registry) error {
	return registry.Register(New())
}

// Process appends the sample_ko_count column. Tables without a sample
// column pass through untouched.
func (Plugin) Process(_ context.Context, tab *table.Table) (*table.Table, error) {
	if tab == nil {
		return nil, table.TypeMismatchError{Op: "kocount"}
	}
	if !tab.HasColumn(sampleColumn) {
		return tab, nil
	}
	counts := make(map[string]int)
	for row := 0; row < tab.Len(); row++ {
		sample, _ := tab.Cell(row, sampleColumn)
		counts[sample]++
	}
	cells := make([]string, tab.Len())
	for row := range cells {
		sample, _ := tab.Cell(row, sampleColumn)
		cells[row] = strconv.Itoa(counts[sample])
	}
	out := tab.Clone()
	if err := out.AppendColumn(Column, cells); err != nil {
		return nil, err
	}
	return out, nil
}
