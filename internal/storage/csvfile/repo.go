// Package csvfile implements storage.Repository as a single CSV file: a
// header of column names, one line per row, no index column, optionally
// prefixed with a UTF-8 byte order mark.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"worldpop/internal/datasource"
	"worldpop/internal/datasource/file"
	"worldpop/internal/storage"
	"worldpop/internal/table"
)

// Kind is the storage kind this package registers.
const Kind = "csv"

func init() {
	storage.Register(Kind, func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(cfg)
	})
}

// Repository writes tables to a file sink.
type Repository struct {
	cfg  storage.Config
	sink datasource.Sink
}

// NewRepository returns a Repository writing to cfg.Path.
func NewRepository(cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("csvfile: path must not be empty")
	}
	return &Repository{cfg: cfg, sink: file.NewLocal(cfg.Path)}, nil
}

// counter counts bytes passing through.
type counter struct{ n int64 }

func (c *counter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// Write replaces the destination with t. Missing cells are written empty and
// numbers in their shortest round-trip form.
func (r *Repository) Write(ctx context.Context, t *table.Table) (storage.Result, error) {
	dst, err := r.sink.Create(ctx)
	if err != nil {
		return storage.Result{}, fmt.Errorf("csvfile: %w", err)
	}

	res, werr := r.encode(dst, t)
	if cerr := dst.Close(); werr == nil && cerr != nil {
		werr = fmt.Errorf("csvfile: close %s: %w", r.cfg.Path, cerr)
	}
	return res, werr
}

func (r *Repository) encode(dst io.Writer, t *table.Table) (storage.Result, error) {
	h := xxh3.New()
	n := &counter{}
	var out io.Writer = io.MultiWriter(dst, h, n)

	var enc *transform.Writer
	if r.cfg.BOM {
		enc = transform.NewWriter(out, unicode.UTF8BOM.NewEncoder())
		out = enc
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns); err != nil {
		return storage.Result{}, fmt.Errorf("csvfile: write header: %w", err)
	}
	cells := make([]string, len(t.Columns))
	for _, rec := range t.Rows {
		for i, c := range t.Columns {
			cells[i] = rec.Get(c).String()
		}
		if err := cw.Write(cells); err != nil {
			return storage.Result{}, fmt.Errorf("csvfile: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return storage.Result{}, fmt.Errorf("csvfile: flush: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return storage.Result{}, fmt.Errorf("csvfile: encode: %w", err)
		}
	}

	return storage.Result{Rows: t.Len(), Bytes: n.n, Digest: h.Sum64()}, nil
}

// Close is a no-op; every Write opens and closes its own file.
func (r *Repository) Close() error { return nil }
