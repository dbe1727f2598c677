package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"worldpop/internal/table"
)

// Printer writes report sections to an io.Writer. The first write error is
// kept and every later call becomes a no-op; check Err once at the end.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer { return &Printer{w: w} }

// Err returns the first write error, if any.
func (p *Printer) Err() error { return p.err }

func (p *Printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}

// Section prints a section title.
func (p *Printer) Section(title string) {
	p.printf("\n=== %s ===\n", title)
}

// Line prints a free-form line.
func (p *Printer) Line(format string, a ...any) {
	p.printf(format+"\n", a...)
}

// Grid prints header and rows as a column-aligned grid. Cells listed in
// right are right-aligned (numbers); widths account for wide and combining
// runes so accented country names line up.
func (p *Printer) Grid(header []string, rows [][]string, right []bool) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if w := runewidth.StringWidth(c); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i := range widths {
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			if i < len(right) && right[i] {
				b.WriteString(runewidth.FillLeft(c, widths[i]))
			} else {
				b.WriteString(runewidth.FillRight(c, widths[i]))
			}
		}
		p.printf("%s\n", strings.TrimRight(b.String(), " "))
	}

	line(header)
	for _, r := range rows {
		line(r)
	}
}

// Rows prints the given columns of t, one line per row.
func (p *Printer) Rows(t *table.Table, cols ...string) {
	sel := t.Select(cols...)
	right := make([]bool, len(sel.Columns))
	for i, c := range sel.Columns {
		right[i] = ColumnKind(sel, c) != table.Text
	}
	rows := make([][]string, len(sel.Rows))
	for i, r := range sel.Rows {
		cells := make([]string, len(sel.Columns))
		for j, c := range sel.Columns {
			cells[j] = FormatValue(r.Get(c))
		}
		rows[i] = cells
	}
	p.Grid(sel.Columns, rows, right)
}

// Info prints the per-column overview produced by Info.
func (p *Printer) Info(rows int, infos []ColumnInfo) {
	p.Line("rows: %d, columns: %d", rows, len(infos))
	grid := make([][]string, len(infos))
	for i, ci := range infos {
		grid[i] = []string{strconv.Itoa(i), ci.Column, strconv.Itoa(ci.NonNull), ci.Kind.String()}
	}
	p.Grid([]string{"#", "column", "non-null", "kind"}, grid, []bool{true, false, true, false})
}

// Numeric prints numeric summaries, one column per line.
func (p *Printer) Numeric(s []NumericSummary) {
	grid := make([][]string, len(s))
	for i, n := range s {
		grid[i] = []string{
			n.Column, strconv.Itoa(n.Count),
			FormatFloat(n.Mean), FormatFloat(n.Std), FormatFloat(n.Min),
			FormatFloat(n.Q25), FormatFloat(n.Q50), FormatFloat(n.Q75), FormatFloat(n.Max),
		}
	}
	p.Grid(
		[]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		grid,
		[]bool{false, true, true, true, true, true, true, true, true},
	)
}

// Text prints text summaries, one column per line.
func (p *Printer) Text(s []TextSummary) {
	grid := make([][]string, len(s))
	for i, t := range s {
		grid[i] = []string{t.Column, strconv.Itoa(t.Count), strconv.Itoa(t.Unique), t.Top, strconv.Itoa(t.Freq)}
	}
	p.Grid([]string{"column", "count", "unique", "top", "freq"}, grid, []bool{false, true, true, false, true})
}

// Groups prints a grouped mean with keyLabel and valueLabel as headers.
func (p *Printer) Groups(keyLabel, valueLabel string, gs []Group) {
	grid := make([][]string, len(gs))
	for i, g := range gs {
		grid[i] = []string{g.Key, FormatValue(g.Mean)}
	}
	p.Grid([]string{keyLabel, valueLabel}, grid, []bool{false, true})
}

// FormatValue renders a cell for display: missing as NaN, numbers via
// FormatFloat, text verbatim.
func FormatValue(v table.Value) string {
	if f, ok := v.Float(); ok {
		return FormatFloat(f)
	}
	if v.IsMissing() {
		return "NaN"
	}
	return v.String()
}

// FormatFloat renders whole numbers with thousands separators and anything
// else with at most two decimals.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 0):
		return strconv.FormatFloat(f, 'f', -1, 64)
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return humanize.Comma(int64(f))
	default:
		return humanize.CommafWithDigits(f, 2)
	}
}
