// Package builtin contains the reusable cleaning and enrichment transformers
// of the pipeline.
package builtin

import "worldpop/internal/table"

// Require removes any record missing a value for one of Fields. Fields the
// table does not have are not enforced.
type Require struct {
	Fields []string

	// OnDrop, when set, is called once per removed record.
	OnDrop func(table.Record)
}

// Apply filters rows in place, preserving order.
func (r Require) Apply(in *table.Table) *table.Table {
	if in == nil {
		return in
	}
	fields := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if in.Has(f) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return in
	}

	out := in.Rows[:0]
	for _, rec := range in.Rows {
		ok := true
		for _, f := range fields {
			v := rec.Get(f)
			if s, isText := v.Text(); v.IsMissing() || (isText && s == "") {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
			continue
		}
		if r.OnDrop != nil {
			r.OnDrop(rec)
		}
	}
	clear(in.Rows[len(out):])
	in.Rows = out
	return in
}
