package table

import (
	"bytes"
	"errors"
	"testing"
)

func TestNormalizeCategoricalColumns(t *testing.T) {
	tab := buildTable(t, []string{"ko", "gene"}, [][]string{
		{"K00001", "alkB"},
		{"K00002", "alkB"},
		{"K00001", "xylE"},
	})
	norm, err := Normalize(tab, []string{"ko", "gene"}, "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for _, name := range []string{"ko", "gene"} {
		if kind, _ := norm.ColumnKind(name); kind != KindDict {
			t.Fatalf("expected %s dictionary-encoded, got %s", name, kind)
		}
	}
	for i := 0; i < tab.Len(); i++ {
		for _, name := range []string{"ko", "gene"} {
			before, _ := tab.Cell(i, name)
			after, _ := norm.Cell(i, name)
			if before != after {
				t.Fatalf("cell %d/%s changed: %q -> %q", i, name, before, after)
			}
		}
	}
}

func TestNormalizeNumericPrefix(t *testing.T) {
	tab := buildTable(t, []string{"cpd", "value_score"}, [][]string{
		{"C00042", "0.75"},
		{"C00180", "not-a-number"},
		{"C00530", ""},
	})
	norm, err := Normalize(tab, nil, "value_")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if kind, _ := norm.ColumnKind("value_score"); kind != KindFloat32 {
		t.Fatalf("expected float32 storage, got %s", kind)
	}
	if got, _ := norm.Cell(0, "value_score"); got != "0.75" {
		t.Fatalf("expected 0.75, got %q", got)
	}
	// Unparseable and empty cells both map to the missing sentinel.
	for _, row := range []int{1, 2} {
		if got, _ := norm.Cell(row, "value_score"); got != "" {
			t.Fatalf("expected missing cell at row %d, got %q", row, got)
		}
	}
}

func TestNormalizeLabelPrefixAlwaysCategorical(t *testing.T) {
	tab := buildTable(t, []string{"cpd", "label_acute_toxicity"}, [][]string{
		{"C00042", "0.91"},
	})
	// A numeric prefix that matches the label column must not win.
	norm, err := Normalize(tab, nil, "label_")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if kind, _ := norm.ColumnKind("label_acute_toxicity"); kind != KindDict {
		t.Fatalf("expected label column dictionary-encoded, got %s", kind)
	}
	if got, _ := norm.Cell(0, "label_acute_toxicity"); got != "0.91" {
		t.Fatalf("expected raw text preserved, got %q", got)
	}
}

func TestNormalizeSkipsAbsentColumns(t *testing.T) {
	tab := buildTable(t, []string{"ko"}, [][]string{{"K00001"}})
	norm, err := Normalize(tab, []string{"ko", "no_such_column"}, "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if norm.Len() != 1 || len(norm.Columns()) != 1 {
		t.Fatalf("unexpected shape %d/%d", norm.Len(), len(norm.Columns()))
	}
}

func TestNormalizeNilTable(t *testing.T) {
	_, err := Normalize(nil, nil, "")
	var mismatch TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected type mismatch error, got %v", err)
	}
}

func TestNormalizeIsRepresentationOnly(t *testing.T) {
	tab := buildTable(t, []string{"cpd", "label_class", "value_score"}, [][]string{
		{"C00042", "organic acid", "0.75"},
		{"C00180", "aromatic", "0.5"},
	})
	norm, err := Normalize(tab, []string{"cpd"}, "value_")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var raw, encoded bytes.Buffer
	if err := tab.WriteDelimited(&raw, ';'); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if err := norm.WriteDelimited(&encoded, ';'); err != nil {
		t.Fatalf("write normalized: %v", err)
	}
	if raw.String() != encoded.String() {
		t.Fatalf("normalization changed persisted bytes:\n%s\nvs\n%s", raw.String(), encoded.String())
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	tab := buildTable(t, []string{"ko", "value_score"}, [][]string{{"K00001", "1.5"}})
	once, err := Normalize(tab, []string{"ko"}, "value_")
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	twice, err := Normalize(once, []string{"ko"}, "value_")
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	for i := 0; i < tab.Len(); i++ {
		for _, name := range tab.Columns() {
			a, _ := once.Cell(i, name)
			b, _ := twice.Cell(i, name)
			if a != b {
				t.Fatalf("cell %d/%s drifted after re-normalize: %q vs %q", i, name, a, b)
			}
		}
	}
}
