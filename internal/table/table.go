// Package table holds the in-memory tabular model shared by every pipeline
// stage: an ordered column list plus ordered rows of optional, typed values.
//
// A Value is either missing, text, or a number. Stages never signal bad data
// out of band; a cell that cannot be interpreted simply becomes missing.
package table

import (
	"slices"
	"strconv"
)

// Kind tags the dynamic type carried by a Value.
type Kind uint8

const (
	// Missing marks an absent value.
	Missing Kind = iota
	// Text is a string value.
	Text
	// Number is a float64 value.
	Number
)

// String returns a short name for k.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "missing"
	}
}

// Value is an optional cell value. The zero Value is missing.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Null returns a missing value.
func Null() Value { return Value{} }

// Str returns a text value.
func Str(s string) Value { return Value{kind: Text, str: s} }

// Num returns a numeric value.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is absent.
func (v Value) IsMissing() bool { return v.kind == Missing }

// Text returns the string and true when v is a text value.
func (v Value) Text() (string, bool) {
	if v.kind != Text {
		return "", false
	}
	return v.str, true
}

// Float returns the number and true when v is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// String formats v the way it is written to CSV: text verbatim, numbers in
// the shortest representation that round-trips, missing as "".
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Record is one row keyed by column name. Absent keys read as missing.
type Record map[string]Value

// Get returns the value of col, or missing when the key is absent.
func (r Record) Get(col string) Value { return r[col] }

// Table is an ordered set of columns and rows. Rows may share no state with
// each other; stages mutate them in place.
type Table struct {
	Columns []string
	Rows    []Record
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: slices.Clone(columns)}
}

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	return slices.Contains(t.Columns, col)
}

// AddColumn appends col to the column list when it is not present yet.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of col in row order.
func (t *Table) Column(col string) []Value {
	out := make([]Value, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Get(col)
	}
	return out
}

// Select returns a new table with only the named columns that exist in t.
// Rows are copied shallowly; Values are immutable so this is safe.
func (t *Table) Select(cols ...string) *Table {
	keep := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			keep = append(keep, c)
		}
	}
	out := &Table{Columns: keep, Rows: make([]Record, len(t.Rows))}
	for i, r := range t.Rows {
		nr := make(Record, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows[i] = nr
	}
	return out
}

// Head returns a view of the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}
