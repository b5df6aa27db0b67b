package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// WriteDelimited writes the table as delimited text: one header row with
// the column names, then one row per table row, separated by sep.
func (t *Table) WriteDelimited(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for row := 0; row < t.rows; row++ {
		if err := cw.Write(t.Row(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDelimited parses delimited text produced in the WriteDelimited shape
// back into a table. The first row is the header; every data row must match
// its width.
func ReadDelimited(r io.Reader, sep rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("table: missing header row")
	}
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("table: duplicate column %q", name)
		}
		seen[name] = true
	}
	t := New(header...)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := t.AppendRow(record...); err != nil {
			return nil, err
		}
	}
	return t, nil
}
