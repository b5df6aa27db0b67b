package table

import (
	"errors"
	"reflect"
	"testing"
)

func buildTable(t *testing.T, columns []string, rows [][]string) *Table {
	t.Helper()
	tab := New(columns...)
	for _, r := range rows {
		if err := tab.AppendRow(r...); err != nil {
			t.Fatalf("append row %v: %v", r, err)
		}
	}
	return tab
}

func TestMergeInnerJoinDropsUnmatched(t *testing.T) {
	left := buildTable(t, []string{"sample", "ko"}, [][]string{
		{"S1", "K00001"},
		{"S1", "K00002"},
		{"S2", "K00001"},
	})
	right := buildTable(t, []string{"ko", "gene"}, [][]string{
		{"K00001", "alkB"},
	})
	merged, err := Merge(left, right, "ko")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", merged.Len())
	}
	want := []string{"ko", "sample", "gene"}
	if !reflect.DeepEqual(merged.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, merged.Columns())
	}
	first := merged.Row(0)
	if first[0] != "K00001" || first[1] != "S1" || first[2] != "alkB" {
		t.Fatalf("unexpected first row %v", first)
	}
	second := merged.Row(1)
	if second[1] != "S2" {
		t.Fatalf("expected S2 in second row, got %v", second)
	}
}

func TestMergeMissingKey(t *testing.T) {
	withKey := buildTable(t, []string{"ko", "gene"}, nil)
	withoutKey := buildTable(t, []string{"sample"}, nil)

	_, err := Merge(withoutKey, withKey, "ko")
	var missing MissingKeyError
	if !errors.As(err, &missing) || missing.Side != "left" || missing.Key != "ko" {
		t.Fatalf("expected left missing key error, got %v", err)
	}
	_, err = Merge(withKey, withoutKey, "ko")
	if !errors.As(err, &missing) || missing.Side != "right" {
		t.Fatalf("expected right missing key error, got %v", err)
	}
}

func TestMergeNilTable(t *testing.T) {
	tab := buildTable(t, []string{"ko"}, nil)
	_, err := Merge(nil, tab, "ko")
	var mismatch TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected type mismatch error, got %v", err)
	}
}

func TestMergeDuplicateKeysFanOut(t *testing.T) {
	left := buildTable(t, []string{"sample", "ko"}, [][]string{
		{"S1", "K00001"},
		{"S2", "K00001"},
	})
	right := buildTable(t, []string{"ko", "pathway"}, [][]string{
		{"K00001", "alkane"},
		{"K00001", "aromatic"},
	})
	merged, err := Merge(left, right, "ko")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Len() != 4 {
		t.Fatalf("expected cross-product of 4 rows, got %d", merged.Len())
	}
	// Left order outermost, right order within each group.
	wantRows := [][]string{
		{"K00001", "S1", "alkane"},
		{"K00001", "S1", "aromatic"},
		{"K00001", "S2", "alkane"},
		{"K00001", "S2", "aromatic"},
	}
	for i, want := range wantRows {
		if got := merged.Row(i); !reflect.DeepEqual(got, want) {
			t.Fatalf("row %d: expected %v got %v", i, want, got)
		}
	}
}

func TestMergeSuffixesCollidingColumns(t *testing.T) {
	left := buildTable(t, []string{"ko", "gene"}, [][]string{{"K00001", "left-gene"}})
	right := buildTable(t, []string{"ko", "gene"}, [][]string{{"K00001", "right-gene"}})
	merged, err := Merge(left, right, "ko")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := []string{"ko", "gene_x", "gene_y"}
	if !reflect.DeepEqual(merged.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, merged.Columns())
	}
	lv, _ := merged.Cell(0, "gene_x")
	rv, _ := merged.Cell(0, "gene_y")
	if lv != "left-gene" || rv != "right-gene" {
		t.Fatalf("expected origin-tagged values, got %q/%q", lv, rv)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	left := buildTable(t, []string{"sample", "ko"}, [][]string{
		{"S1", "K00001"},
		{"S2", "K00002"},
	})
	right := buildTable(t, []string{"ko", "gene"}, [][]string{
		{"K00001", "alkB"},
		{"K00002", "xylE"},
	})
	first, err := Merge(left, right, "ko")
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, err := Merge(left, right, "ko")
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if first.Len() != second.Len() || !reflect.DeepEqual(first.Columns(), second.Columns()) {
		t.Fatalf("repeated merge changed shape: %d/%v vs %d/%v", first.Len(), first.Columns(), second.Len(), second.Columns())
	}
	for i := 0; i < first.Len(); i++ {
		if !reflect.DeepEqual(first.Row(i), second.Row(i)) {
			t.Fatalf("row %d differs between identical merges", i)
		}
	}
}

func TestMergePreservesColumnStorage(t *testing.T) {
	left := buildTable(t, []string{"sample", "cpd"}, [][]string{{"S1", "C00042"}})
	rawRight := buildTable(t, []string{"cpd", "label_class", "value_score"}, [][]string{
		{"C00042", "organic acid", "0.75"},
	})
	right, err := Normalize(rawRight, []string{"cpd"}, "value_")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	merged, err := Merge(left, right, "cpd")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if kind, _ := merged.ColumnKind("label_class"); kind != KindDict {
		t.Fatalf("expected dict storage, got %s", kind)
	}
	if kind, _ := merged.ColumnKind("value_score"); kind != KindFloat32 {
		t.Fatalf("expected float32 storage, got %s", kind)
	}
	plain, err := Merge(left, rawRight, "cpd")
	if err != nil {
		t.Fatalf("plain merge: %v", err)
	}
	for i := 0; i < merged.Len(); i++ {
		if !reflect.DeepEqual(merged.Row(i), plain.Row(i)) {
			t.Fatalf("row %d differs between normalized and raw merge", i)
		}
	}
}
