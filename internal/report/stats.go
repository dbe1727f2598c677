// Package report computes the read-only aggregates of the cleaned table and
// prints them as aligned text tables.
package report

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"worldpop/internal/table"
)

// Group is one row of a grouped mean.
type Group struct {
	Key   string
	Mean  table.Value // missing when the group has no values
	Count int         // non-missing values averaged
}

// GroupMean averages valueCol per distinct text value of groupCol. Rows with a
// missing group are excluded; missing values are skipped inside a group. The
// result is sorted by mean descending, groups without any value last, ties by
// key.
func GroupMean(t *table.Table, groupCol, valueCol string) []Group {
	vals := make(map[string][]float64)
	var keys []string
	for _, r := range t.Rows {
		k, ok := r.Get(groupCol).Text()
		if !ok {
			continue
		}
		if _, seen := vals[k]; !seen {
			keys = append(keys, k)
			vals[k] = nil
		}
		if f, ok := r.Get(valueCol).Float(); ok {
			vals[k] = append(vals[k], f)
		}
	}

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := Group{Key: k, Count: len(vals[k])}
		if g.Count > 0 {
			g.Mean = table.Num(stat.Mean(vals[k], nil))
		}
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Group) int {
		if c := compareDesc(a.Mean, b.Mean); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// TopN returns the first n rows ordered by col descending. Missing values
// sort last and ties keep input order. A negative n yields no rows.
func TopN(t *table.Table, col string, n int) *table.Table {
	rows := slices.Clone(t.Rows)
	slices.SortStableFunc(rows, func(a, b table.Record) int {
		return compareDesc(a.Get(col), b.Get(col))
	})
	return &table.Table{Columns: t.Columns, Rows: rows[:clamp(n, len(rows))]}
}

// BottomN returns the first n rows with a numeric col ordered ascending.
// Rows where col is missing are excluded and ties keep input order. A
// negative n yields no rows.
func BottomN(t *table.Table, col string, n int) *table.Table {
	rows := make([]table.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		if _, ok := r.Get(col).Float(); ok {
			rows = append(rows, r)
		}
	}
	slices.SortStableFunc(rows, func(a, b table.Record) int {
		x, _ := a.Get(col).Float()
		y, _ := b.Get(col).Float()
		return cmp.Compare(x, y)
	})
	return &table.Table{Columns: t.Columns, Rows: rows[:clamp(n, len(rows))]}
}

// clamp bounds n to [0, size].
func clamp(n, size int) int {
	return min(max(n, 0), size)
}

// compareDesc orders numbers descending with non-numbers after them.
func compareDesc(a, b table.Value) int {
	x, okA := a.Float()
	y, okB := b.Float()
	switch {
	case okA && okB:
		return cmp.Compare(y, x)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return 0
	}
}

// NumericSummary describes a numeric column.
type NumericSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// TextSummary describes a text column.
type TextSummary struct {
	Column string
	Count  int
	Unique int
	Top    string
	Freq   int
}

// Describe summarizes every column of t. A column is text when it holds at
// least one text value and numeric otherwise. Statistics that are undefined
// for the sample size (everything on an empty column, Std below two values)
// are NaN.
func Describe(t *table.Table) ([]NumericSummary, []TextSummary) {
	var nums []NumericSummary
	var texts []TextSummary
	for _, col := range t.Columns {
		if ColumnKind(t, col) == table.Text {
			texts = append(texts, describeText(t, col))
			continue
		}
		nums = append(nums, describeNumeric(t, col))
	}
	return nums, texts
}

func describeNumeric(t *table.Table, col string) NumericSummary {
	var xs []float64
	for _, r := range t.Rows {
		if f, ok := r.Get(col).Float(); ok {
			xs = append(xs, f)
		}
	}
	s := NumericSummary{Column: col, Count: len(xs)}
	nan := math.NaN()
	if len(xs) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	slices.Sort(xs)
	s.Mean = stat.Mean(xs, nil)
	s.Std = nan
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	s.Min, s.Max = xs[0], xs[len(xs)-1]
	s.Q25 = Quantile(xs, 0.25)
	s.Q50 = Quantile(xs, 0.50)
	s.Q75 = Quantile(xs, 0.75)
	return s
}

func describeText(t *table.Table, col string) TextSummary {
	counts := make(map[string]int)
	var order []string
	s := TextSummary{Column: col}
	for _, r := range t.Rows {
		v := r.Get(col)
		if v.IsMissing() {
			continue
		}
		str := v.String()
		if _, seen := counts[str]; !seen {
			order = append(order, str)
		}
		counts[str]++
		s.Count++
	}
	s.Unique = len(counts)
	for _, k := range order {
		if counts[k] > s.Freq {
			s.Top, s.Freq = k, counts[k]
		}
	}
	return s
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between the closest ranks. sorted must be ascending and non-empty.
func Quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ColumnInfo is one line of the per-column overview.
type ColumnInfo struct {
	Column  string
	NonNull int
	Kind    table.Kind
}

// Info lists non-missing counts and the inferred kind of every column.
func Info(t *table.Table) []ColumnInfo {
	out := make([]ColumnInfo, 0, len(t.Columns))
	for _, col := range t.Columns {
		ci := ColumnInfo{Column: col, Kind: ColumnKind(t, col)}
		for _, r := range t.Rows {
			if !r.Get(col).IsMissing() {
				ci.NonNull++
			}
		}
		out = append(out, ci)
	}
	return out
}

// ColumnKind is Text when any value of col is text, Number when all present
// values are numbers, and Missing for an all-missing column.
func ColumnKind(t *table.Table, col string) table.Kind {
	kind := table.Missing
	for _, r := range t.Rows {
		switch r.Get(col).Kind() {
		case table.Text:
			return table.Text
		case table.Number:
			kind = table.Number
		}
	}
	return kind
}
