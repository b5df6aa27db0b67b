// Package table implements the columnar value table shared by the ingest,
// reference-store and pipeline layers: ordered schema, text cells, and
// optional per-column re-encoding (dictionary or float32) that never
// changes the values a cell renders to.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the physical storage of a column.
type Kind string

const (
	KindString  Kind = "string"  // raw text cells (default)
	KindDict    Kind = "dict"    // dictionary-encoded text
	KindFloat32 Kind = "float32" // 32-bit floats, NaN marks a missing cell
)

// LabelPrefix marks columns that are always dictionary-encoded during
// normalization, regardless of any numeric prefix rule.
const LabelPrefix = "label_"

type column struct {
	name  string
	kind  Kind
	str   []string  // KindString
	dict  []string  // KindDict: distinct values in first-seen order
	codes []int32   // KindDict: per-row index into dict
	f32   []float32 // KindFloat32
}

func (c *column) len() int {
	switch c.kind {
	case KindDict:
		return len(c.codes)
	case KindFloat32:
		return len(c.f32)
	default:
		return len(c.str)
	}
}

// cell renders the row's value as text. Missing float cells render empty.
func (c *column) cell(row int) string {
	switch c.kind {
	case KindDict:
		return c.dict[c.codes[row]]
	case KindFloat32:
		v := c.f32[row]
		if math.IsNaN(float64(v)) {
			return ""
		}
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return c.str[row]
	}
}

func (c *column) append(cell string) {
	switch c.kind {
	case KindDict:
		c.codes = append(c.codes, c.code(cell))
	case KindFloat32:
		f, err := strconv.ParseFloat(strings.TrimSpace(cell), 32)
		if err != nil {
			f = math.NaN()
		}
		c.f32 = append(c.f32, float32(f))
	default:
		c.str = append(c.str, cell)
	}
}

func (c *column) code(cell string) int32 {
	for i, v := range c.dict {
		if v == cell {
			return int32(i)
		}
	}
	c.dict = append(c.dict, cell)
	return int32(len(c.dict) - 1)
}

// copyFrom appends the source column's cell at row, preserving storage.
// Caller guarantees matching kind and, for dict columns, a shared dictionary.
func (c *column) copyFrom(src *column, row int) {
	switch c.kind {
	case KindDict:
		c.codes = append(c.codes, src.codes[row])
	case KindFloat32:
		c.f32 = append(c.f32, src.f32[row])
	default:
		c.str = append(c.str, src.str[row])
	}
}

func (c *column) clone() *column {
	nc := &column{name: c.name, kind: c.kind}
	nc.str = append([]string(nil), c.str...)
	nc.dict = append([]string(nil), c.dict...)
	nc.codes = append([]int32(nil), c.codes...)
	nc.f32 = append([]float32(nil), c.f32...)
	return nc
}

// Table is a columnar table with an ordered schema. Column names must be
// unique. Cells enter as text; Normalize may re-encode individual columns
// without changing the text they render to.
type Table struct {
	cols   []*column
	byName map[string]int
	rows   int
}

// New returns an empty table with the given column order.
func New(columns ...string) *Table {
	t := &Table{byName: make(map[string]int, len(columns))}
	for _, name := range columns {
		t.byName[name] = len(t.cols)
		t.cols = append(t.cols, &column{name: name, kind: KindString})
	}
	return t
}

// Columns returns the column names in schema order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// ColumnKind returns the storage kind of the named column.
func (t *Table) ColumnKind(name string) (Kind, bool) {
	i, ok := t.byName[name]
	if !ok {
		return "", false
	}
	return t.cols[i].kind, true
}

// AppendRow adds one row. The cell count must match the schema width.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("table: row has %d cells, want %d", len(cells), len(t.cols))
	}
	for i, c := range t.cols {
		c.append(cells[i])
	}
	t.rows++
	return nil
}

// AppendColumn adds a raw-text column with one cell per existing row.
func (t *Table) AppendColumn(name string, cells []string) error {
	if _, exists := t.byName[name]; exists {
		return fmt.Errorf("table: column %q already exists", name)
	}
	if len(cells) != t.rows {
		return fmt.Errorf("table: column %q has %d cells, want %d", name, len(cells), t.rows)
	}
	t.byName[name] = len(t.cols)
	t.cols = append(t.cols, &column{name: name, kind: KindString, str: append([]string(nil), cells...)})
	return nil
}

// Cell returns the rendered text of one cell and whether it exists.
func (t *Table) Cell(row int, column string) (string, bool) {
	i, ok := t.byName[column]
	if !ok || row < 0 || row >= t.rows {
		return "", false
	}
	return t.cols[i].cell(row), true
}

// Row returns the rendered cells of one row in schema order.
func (t *Table) Row(row int) []string {
	cells := make([]string, len(t.cols))
	for i, c := range t.cols {
		cells[i] = c.cell(row)
	}
	return cells
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{byName: make(map[string]int, len(t.cols)), rows: t.rows}
	for _, c := range t.cols {
		out.byName[c.name] = len(out.cols)
		out.cols = append(out.cols, c.clone())
	}
	return out
}
