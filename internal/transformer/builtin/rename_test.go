package builtin

import (
	"reflect"
	"testing"

	"worldpop/internal/schema"
	"worldpop/internal/table"
)

func TestRename_VariantsMapToCanonical(t *testing.T) {
	t.Parallel()

	for src, want := range schema.Renames() {
		src, want := src, want
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			tb := table.New("Country", src)
			tb.Rows = []table.Record{{"Country": table.Str("Peru"), src: table.Str("1")}}

			out := Rename{Map: schema.Renames()}.Apply(tb)

			if !reflect.DeepEqual(out.Columns, []string{"Country", want}) {
				t.Fatalf("columns = %v, want [Country %s]", out.Columns, want)
			}
			if got := out.Rows[0].Get(want); got != table.Str("1") {
				t.Fatalf("value under %q = %#v", want, got)
			}
		})
	}
}

func TestRename_Idempotent(t *testing.T) {
	r := Rename{Map: schema.Renames()}
	tb := table.New("Country", "Population (2023)", "Density(P/Km²)", "Fert.Rate", "Custom")
	tb.Rows = []table.Record{{
		"Country":           table.Str("Peru"),
		"Population (2023)": table.Str("34352719"),
		"Density(P/Km²)":    table.Str("27"),
		"Fert.Rate":         table.Str("2.2"),
		"Custom":            table.Str("x"),
	}}

	once := r.Apply(tb)
	cols := append([]string(nil), once.Columns...)
	row := make(table.Record)
	for k, v := range once.Rows[0] {
		row[k] = v
	}

	twice := r.Apply(once)

	if !reflect.DeepEqual(twice.Columns, cols) {
		t.Fatalf("second rename changed columns: %v -> %v", cols, twice.Columns)
	}
	if !reflect.DeepEqual(twice.Rows[0], row) {
		t.Fatalf("second rename changed row: %v -> %v", row, twice.Rows[0])
	}
	want := []string{"Country", "Population_2023", "Density_per_km2", "Fert_Rate", "Custom"}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}
}

func TestRename_CollisionLaterWins(t *testing.T) {
	tb := table.New("Country", "World Region", "Continent")
	tb.Rows = []table.Record{{
		"Country":      table.Str("Russia"),
		"World Region": table.Str("Europe"),
		"Continent":    table.Str("Asia"),
	}}

	out := Rename{Map: schema.Renames()}.Apply(tb)

	if !reflect.DeepEqual(out.Columns, []string{"Country", "Region"}) {
		t.Fatalf("columns = %v", out.Columns)
	}
	if got := out.Rows[0].Get("Region"); got != table.Str("Asia") {
		t.Fatalf("Region = %#v, want the later column's value", got)
	}
}
