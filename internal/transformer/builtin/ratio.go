package builtin

import "worldpop/internal/table"

// Ratio adds Target = Numerator / Denominator to every row. The result is
// missing when either input is missing or the denominator is zero.
type Ratio struct {
	Target      string
	Numerator   string
	Denominator string
}

// Apply sets Target in place and appends it to the column list.
func (r Ratio) Apply(in *table.Table) *table.Table {
	if in == nil {
		return in
	}
	in.AddColumn(r.Target)
	for _, rec := range in.Rows {
		rec[r.Target] = Divide(rec.Get(r.Numerator), rec.Get(r.Denominator))
	}
	return in
}

// Divide returns a/b, or missing when either side is not a number or b is 0.
func Divide(a, b table.Value) table.Value {
	x, ok := a.Float()
	if !ok {
		return table.Null()
	}
	y, ok := b.Float()
	if !ok || y == 0 {
		return table.Null()
	}
	return table.Num(x / y)
}
