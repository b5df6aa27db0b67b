package testhelper

import "testing"

func TestTableFixtureBuilder(t *testing.T) {
	tbl := Table(TableFixtureConfig{
		Columns: []string{"ko", "gene"},
		Rows:    [][]string{{"K00001", "adhE"}, {"K00002", "akr"}},
	})
	if got := tbl.Len(); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if cell, _ := tbl.Cell(1, "gene"); cell != "akr" {
		t.Fatalf("cell = %q, want akr", cell)
	}
}

func TestTableFixturePanicsOnRaggedRows(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for ragged fixture row")
		}
	}()
	Table(TableFixtureConfig{Columns: []string{"ko"}, Rows: [][]string{{"K00001", "extra"}}})
}

func TestEnrichmentFixtureBuilder(t *testing.T) {
	tbl := Enrichment(EnrichmentFixtureConfig{
		Columns: []string{"ko", "gene"},
		Samples: []SampleFixtureConfig{
			{Sample: "SampleA", Rows: [][]string{{"K00001", "adhE"}, {"K00002", "akr"}}},
			{Sample: "SampleB", Rows: [][]string{{"K00001", "adhE"}}},
		},
	})

	want := []string{SampleColumn, "ko", "gene"}
	cols := tbl.Columns()
	if len(cols) != len(want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Fatalf("columns = %v, want %v", cols, want)
		}
	}
	if got := tbl.Len(); got != 3 {
		t.Fatalf("rows = %d, want 3", got)
	}
	if cell, _ := tbl.Cell(2, SampleColumn); cell != "SampleB" {
		t.Fatalf("sample = %q, want SampleB", cell)
	}
}
