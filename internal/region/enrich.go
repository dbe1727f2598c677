package region

import (
	"worldpop/internal/schema"
	"worldpop/internal/table"
)

// Enrich sets the Region column of every row from its Country. A Region value
// already present in the source is overwritten; countries missing from the
// table get a missing Region.
type Enrich struct {
	Lookup *Lookup

	// OnMiss, when set, is called with each country that has no entry.
	OnMiss func(country string)
}

// Apply writes Region in place and appends the column when absent.
func (e Enrich) Apply(in *table.Table) *table.Table {
	if in == nil {
		return in
	}
	l := e.Lookup
	if l == nil {
		l = Default()
	}
	in.AddColumn(schema.Region)
	for _, rec := range in.Rows {
		rec[schema.Region] = e.regionOf(l, rec)
	}
	return in
}

func (e Enrich) regionOf(l *Lookup, rec table.Record) table.Value {
	country, ok := rec.Get(schema.Country).Text()
	if !ok {
		return table.Null()
	}
	if r, found := l.Region(country); found {
		return table.Str(r)
	}
	if e.OnMiss != nil {
		e.OnMiss(country)
	}
	return table.Null()
}
