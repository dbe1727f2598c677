// Package transformer defines the table-to-table stage contract used by the
// cleaning and enrichment steps.
package transformer

import "worldpop/internal/table"

// Transformer rewrites a table. Implementations may mutate rows in place and
// return the same table.
type Transformer interface{ Apply(*table.Table) *table.Table }

// Func adapts a plain function to Transformer.
type Func func(*table.Table) *table.Table

// Apply calls f.
func (f Func) Apply(t *table.Table) *table.Table { return f(t) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each transformer in order, feeding each the previous output.
func (c Chain) Apply(in *table.Table) *table.Table {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}
