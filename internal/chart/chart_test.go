package chart

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"worldpop/internal/report"
	"worldpop/internal/schema"
	"worldpop/internal/table"
)

func TestPopulationSpec_Millions(t *testing.T) {
	tb := table.New(schema.Country, schema.Population)
	tb.Rows = []table.Record{
		{schema.Country: table.Str("India"), schema.Population: table.Num(1428627663)},
		{schema.Country: table.Str("Nowhere")},
		{schema.Country: table.Str("Chad"), schema.Population: table.Num(18278568)},
	}

	s := PopulationSpec(tb)

	if len(s.Bars) != 2 {
		t.Fatalf("bars = %+v, want rows without population skipped", s.Bars)
	}
	if s.Bars[0].Label != "India" || s.Bars[0].Value != 1428.627663 {
		t.Fatalf("first bar = %+v", s.Bars[0])
	}
}

func TestMedianAgeSpec_SkipsMissingMeans(t *testing.T) {
	s := MedianAgeSpec([]report.Group{
		{Key: "Europe", Mean: table.Num(42.1), Count: 3},
		{Key: "Oceania", Mean: table.Null()},
	})
	if len(s.Bars) != 1 || s.Bars[0].Label != "Europe" {
		t.Fatalf("bars = %+v", s.Bars)
	}
}

func TestRender_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	spec := Spec{
		Title:        "t",
		YLabel:       "y",
		Bars:         []Bar{{Label: "Côte d'Ivoire", Value: 28.9}, {Label: "Peru", Value: 34.3}},
		RotateLabels: true,
	}

	for _, name := range []string{"c.png", "c.svg"} {
		path := filepath.Join(dir, name)
		if err := Render(spec, path); err != nil {
			t.Fatalf("Render(%s): %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if st.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()

	if err := Render(Spec{}, filepath.Join(dir, "x.png")); !errors.Is(err, ErrNoData) {
		t.Fatalf("empty spec err = %v, want ErrNoData", err)
	}

	spec := Spec{Bars: []Bar{{Label: "a", Value: 1}}}
	if err := Render(spec, filepath.Join(dir, "x.unknown")); err == nil {
		t.Fatalf("unsupported extension should fail")
	}
	if err := Render(spec, filepath.Join(dir, "missing", "x.png")); err == nil {
		t.Fatalf("unwritable path should fail")
	}
}
