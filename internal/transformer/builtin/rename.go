package builtin

import (
	"log"

	"worldpop/internal/table"
)

// Rename maps source column names onto canonical ones. Columns absent from
// Map keep their name, so applying Rename to its own output is a no-op as long
// as no canonical name is itself a key of Map.
//
// When two columns end up with the same name the later one wins and the
// earlier is dropped from the table.
type Rename struct {
	Map map[string]string
}

// Apply renames columns in place.
func (r Rename) Apply(in *table.Table) *table.Table {
	if len(r.Map) == 0 || in == nil {
		return in
	}

	targets := make([]string, len(in.Columns))
	last := make(map[string]int, len(in.Columns))
	for i, c := range in.Columns {
		n := c
		if m, ok := r.Map[c]; ok {
			n = m
		}
		if prev, dup := last[n]; dup {
			log.Printf("rename: column %q replaces earlier %q as %q", c, in.Columns[prev], n)
		}
		targets[i] = n
		last[n] = i
	}

	cols := make([]string, 0, len(last))
	for i, n := range targets {
		if last[n] == i {
			cols = append(cols, n)
		}
	}

	for ri, rec := range in.Rows {
		nr := make(table.Record, len(cols))
		for i, c := range in.Columns {
			n := targets[i]
			if last[n] != i {
				continue
			}
			if v, ok := rec[c]; ok {
				nr[n] = v
			}
		}
		in.Rows[ri] = nr
	}
	in.Columns = cols
	return in
}
