// Package csv loads a delimited text file into a table.Table of raw text
// values. The whole input is read into memory; the datasets this tool is
// meant for have a few hundred rows.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"worldpop/internal/table"
)

var (
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("csv: empty input")

	// ErrDuplicateHeader is returned when two header cells carry the same name.
	ErrDuplicateHeader = errors.New("csv: duplicate header")
)

// Options configures the parser. The zero value is a strict comma-separated
// reader.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Lenient relaxes quoting rules and skips rows whose width differs from
	// the header instead of failing the whole load. Skipped rows are counted.
	Lenient bool
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// skipLogLimit caps the per-row skip messages emitted in lenient mode.
const skipLogLimit = 20

// Parse reads the header row and all records from r.
//
// Every non-empty cell becomes a table.Str value; empty cells become missing.
// In strict mode any malformed record aborts the load with an error carrying
// the offending line. In lenient mode such rows are skipped and the number of
// skipped rows is returned alongside the table.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(DecodeUTF8(r))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	if p.opt.Lenient {
		cr.LazyQuotes = true
		cr.FieldsPerRecord = -1
	}

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, ErrEmptyInput
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := normalizeHeaders(h)
	if err != nil {
		return nil, 0, err
	}

	out := table.New(headers...)
	var skipped int

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !p.opt.Lenient {
				return nil, skipped, fmt.Errorf("read csv: %w", err)
			}
			if skipped < skipLogLimit {
				log.Printf("csv: skipping row: %v", err)
			}
			skipped++
			continue
		}

		if len(row) != len(headers) {
			// Only reachable in lenient mode; strict mode lets encoding/csv
			// reject ragged rows with ErrFieldCount.
			if skipped < skipLogLimit {
				line, _ := cr.FieldPos(0)
				log.Printf("csv: skipping line %d: expected %d fields, got %d", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(table.Record, len(row))
		for i, val := range row {
			rec[headers[i]] = emptyToNull(val)
		}
		out.Rows = append(out.Rows, rec)
	}

	return out, skipped, nil
}

// emptyToNull converts an empty cell to a missing value; anything else is
// kept verbatim as text.
func emptyToNull(s string) table.Value {
	if s == "" {
		return table.Null()
	}
	return table.Str(s)
}

// normalizeHeaders trims header cells, strips a stray BOM and synthesizes
// "col_N" names for blank cells. Duplicate names are an error since records
// are keyed by column name.
func normalizeHeaders(h []string) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]struct{}, len(h))
	for i, col := range StripHeaderBOM(h) {
		c := strings.TrimSpace(col)
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, c)
		}
		seen[c] = struct{}{}
		res[i] = c
	}
	return res, nil
}
