package table

// Merge inner-joins left and right on exact equality of the key column.
// Rows without a partner are dropped; duplicated key values join as the
// full cross-product of the matching groups, left row order outermost.
// The output carries the key once, then the remaining left columns, then
// the remaining right columns; non-key names present on both sides gain
// an _x (left) or _y (right) suffix. Column storage is preserved, so a
// normalized input yields a normalized output.
func Merge(left, right *Table, key string) (*Table, error) {
	if left == nil || right == nil {
		return nil, TypeMismatchError{Op: "merge"}
	}
	li, ok := left.byName[key]
	if !ok {
		return nil, MissingKeyError{Key: key, Side: "left"}
	}
	ri, ok := right.byName[key]
	if !ok {
		return nil, MissingKeyError{Key: key, Side: "right"}
	}

	type source struct {
		col      *column
		fromLeft bool
	}

	plan := []source{{left.cols[li], true}}
	names := []string{key}
	for i, c := range left.cols {
		if i == li {
			continue
		}
		name := c.name
		if _, shared := right.byName[name]; shared {
			name += "_x"
		}
		plan = append(plan, source{c, true})
		names = append(names, name)
	}
	for i, c := range right.cols {
		if i == ri {
			continue
		}
		name := c.name
		if _, shared := left.byName[name]; shared {
			name += "_y"
		}
		plan = append(plan, source{c, false})
		names = append(names, name)
	}

	out := &Table{byName: make(map[string]int, len(plan))}
	for i, s := range plan {
		oc := &column{name: names[i], kind: s.col.kind}
		if s.col.kind == KindDict {
			oc.dict = append([]string(nil), s.col.dict...)
		}
		out.byName[oc.name] = len(out.cols)
		out.cols = append(out.cols, oc)
	}

	// Index right rows by key value, preserving row order within groups.
	groups := make(map[string][]int, right.rows)
	rkey := right.cols[ri]
	for row := 0; row < right.rows; row++ {
		v := rkey.cell(row)
		groups[v] = append(groups[v], row)
	}

	lkey := left.cols[li]
	for lrow := 0; lrow < left.rows; lrow++ {
		for _, rrow := range groups[lkey.cell(lrow)] {
			for i, s := range plan {
				row := lrow
				if !s.fromLeft {
					row = rrow
				}
				out.cols[i].copyFrom(s.col, row)
			}
			out.rows++
		}
	}
	return out, nil
}
