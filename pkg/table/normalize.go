package table

import (
	"math"
	"strconv"
	"strings"
)

// Normalize returns a copy of t with selected columns re-encoded: names
// listed in categorical become dictionary columns, names carrying
// numericPrefix (when non-empty) become float32 columns with unparseable
// cells mapped to the missing sentinel, and LabelPrefix columns are always
// dictionary-encoded regardless of the other two rules. Listed names
// absent from the table are skipped. The change is representational only;
// rendered cell values drive joins and persistence exactly as before.
func Normalize(t *Table, categorical []string, numericPrefix string) (*Table, error) {
	if t == nil {
		return nil, TypeMismatchError{Op: "normalize"}
	}
	want := make(map[string]bool, len(categorical))
	for _, name := range categorical {
		want[name] = true
	}
	out := &Table{byName: make(map[string]int, len(t.cols)), rows: t.rows}
	for _, c := range t.cols {
		var nc *column
		switch {
		case strings.HasPrefix(c.name, LabelPrefix):
			nc = c.toDict()
		case want[c.name]:
			nc = c.toDict()
		case numericPrefix != "" && strings.HasPrefix(c.name, numericPrefix):
			nc = c.toFloat32()
		default:
			nc = c.clone()
		}
		out.byName[nc.name] = len(out.cols)
		out.cols = append(out.cols, nc)
	}
	return out, nil
}

func (c *column) toDict() *column {
	if c.kind == KindDict {
		return c.clone()
	}
	n := c.len()
	nc := &column{name: c.name, kind: KindDict, codes: make([]int32, 0, n)}
	seen := make(map[string]int32)
	for row := 0; row < n; row++ {
		v := c.cell(row)
		code, ok := seen[v]
		if !ok {
			code = int32(len(nc.dict))
			seen[v] = code
			nc.dict = append(nc.dict, v)
		}
		nc.codes = append(nc.codes, code)
	}
	return nc
}

func (c *column) toFloat32() *column {
	if c.kind == KindFloat32 {
		return c.clone()
	}
	n := c.len()
	nc := &column{name: c.name, kind: KindFloat32, f32: make([]float32, 0, n)}
	for row := 0; row < n; row++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(c.cell(row)), 32)
		if err != nil {
			f = math.NaN()
		}
		nc.f32 = append(nc.f32, float32(f))
	}
	return nc
}
