package builtin

import (
	"strings"

	"worldpop/internal/table"
)

const nbspace = "\u00a0"

// Normalize trims every text cell and turns sentinel tokens into missing
// values. NO-BREAK SPACE is folded to a plain space before trimming. Cells
// that trim down to "" are missing too.
type Normalize struct {
	// Missing lists exact tokens (compared after trimming) meaning "not
	// available", e.g. "nan", "N.A.", "N.A".
	Missing []string
}

// Apply rewrites text cells in place. Numbers and missing values are left as-is.
func (n Normalize) Apply(in *table.Table) *table.Table {
	if in == nil {
		return in
	}
	missing := make(map[string]struct{}, len(n.Missing))
	for _, m := range n.Missing {
		missing[m] = struct{}{}
	}

	for _, r := range in.Rows {
		for k, v := range r {
			s, ok := v.Text()
			if !ok {
				continue
			}
			if strings.Contains(s, nbspace) {
				s = strings.ReplaceAll(s, nbspace, " ")
			}
			if HasEdgeSpace(s) {
				s = strings.TrimSpace(s)
			}
			if _, isNA := missing[s]; isNA || s == "" {
				r[k] = table.Null()
				continue
			}
			r[k] = table.Str(s)
		}
	}
	return in
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
