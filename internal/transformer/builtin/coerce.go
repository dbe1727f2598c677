package builtin

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"worldpop/internal/table"
)

// Coerce parses text cells of the named columns as numbers. Anything that does
// not parse becomes missing; Coerce never fails. Columns the table does not
// have are ignored.
type Coerce struct {
	Columns []string

	// Thousands accepts comma-grouped integers such as "1,428,627,663".
	// Off by default: such cells become missing.
	Thousands bool
}

// Apply converts cells in place.
func (c Coerce) Apply(in *table.Table) *table.Table {
	parse := ParseNumber
	if c.Thousands {
		parse = ParseGroupedNumber
	}
	return coerceColumns(in, c.Columns, parse)
}

// Percent parses percentage cells such as "12.3 %" into 12.3. The tokens in
// Strip are removed before parsing (by default "N.A." and "N.A"), so a cell
// holding only a sentinel ends up missing.
type Percent struct {
	Columns []string
	Strip   []string
}

// DefaultPercentStrip is used when Percent.Strip is nil.
var DefaultPercentStrip = []string{"N.A.", "N.A"}

// Apply converts cells in place.
func (p Percent) Apply(in *table.Table) *table.Table {
	strip := p.Strip
	if strip == nil {
		strip = DefaultPercentStrip
	}
	return coerceColumns(in, p.Columns, func(s string) table.Value {
		s = strings.ReplaceAll(s, "%", "")
		for _, tok := range strip {
			s = strings.ReplaceAll(s, tok, "")
		}
		return ParseNumber(s)
	})
}

func coerceColumns(in *table.Table, cols []string, parse func(string) table.Value) *table.Table {
	if in == nil {
		return in
	}
	for _, col := range cols {
		if !in.Has(col) {
			continue
		}
		for _, r := range in.Rows {
			s, ok := r.Get(col).Text()
			if !ok {
				continue
			}
			r[col] = parse(s)
		}
	}
	return in
}

// ParseNumber parses s as a float after trimming whitespace. NaN, infinities
// and unparseable input, including comma-grouped digits, yield a missing
// value.
func ParseNumber(s string) table.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Null()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return table.Null()
	}
	return table.Num(f)
}

// groupedNumber matches a sign, a leading group of one to three digits, one or
// more comma-separated groups of exactly three, and an optional fraction.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseGroupedNumber is ParseNumber that also accepts well-formed thousands
// groups. Misplaced commas ("1,2,3", ",5") still yield a missing value.
func ParseGroupedNumber(s string) table.Value {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if !groupedNumber.MatchString(s) {
			return table.Null()
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return ParseNumber(s)
}
