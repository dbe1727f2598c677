// Package parser defines the contract for turning a raw input stream into a
// table of text values.
package parser

import (
	"io"

	"worldpop/internal/table"
)

// Parser reads r into a table. The int result counts rows that were skipped
// instead of failing the load.
type Parser interface {
	Parse(r io.Reader) (*table.Table, int, error)
}
