package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"worldpop/internal/table"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 1234567, want: "1,234,567"},
		{in: -36686, want: "-36,686"},
		{in: 2.5, want: "2.5"},
		{in: 0, want: "0"},
		{in: math.NaN(), want: "NaN"},
	}
	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(table.Null()); got != "NaN" {
		t.Fatalf("missing = %q", got)
	}
	if got := FormatValue(table.Str("Curaçao")); got != "Curaçao" {
		t.Fatalf("text = %q", got)
	}
}

// TestGrid_AlignsDisplayWidth checks that accented names do not shift the
// columns that follow them.
func TestGrid_AlignsDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Grid(
		[]string{"Country", "Population"},
		[][]string{{"Curaçao", "192,077"}, {"Chad", "18,278,568"}},
		[]bool{false, true},
	)
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	w := runewidth.StringWidth(lines[0])
	for _, l := range lines[1:] {
		if got := runewidth.StringWidth(l); got != w {
			t.Fatalf("line %q width %d, want %d", l, got, w)
		}
	}
	if !strings.HasSuffix(lines[1], "   192,077") {
		t.Fatalf("numbers should be right-aligned: %q", lines[1])
	}
}

func TestRows_PrintsSelectedColumns(t *testing.T) {
	tb := table.New("Country", "Region", "Median_Age")
	tb.Rows = []table.Record{
		{"Country": table.Str("Peru"), "Region": table.Str("South America"), "Median_Age": table.Num(31)},
		{"Country": table.Str("Atlantis"), "Median_Age": table.Num(40)},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).Rows(tb, "Country", "Median_Age")

	out := buf.String()
	if strings.Contains(out, "Region") || strings.Contains(out, "South America") {
		t.Fatalf("unselected column printed:\n%s", out)
	}
	if !strings.Contains(out, "Atlantis") || !strings.Contains(out, "40") {
		t.Fatalf("missing row content:\n%s", out)
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("disk full")
}

func TestPrinter_StopsAfterFirstError(t *testing.T) {
	fw := &failWriter{}
	p := NewPrinter(fw)
	p.Section("one")
	p.Line("two")
	p.Section("three")
	if p.Err() == nil || fw.n != 1 {
		t.Fatalf("Err = %v, writes = %d; want first error and a single write", p.Err(), fw.n)
	}
}
