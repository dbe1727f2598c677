// Package storage defines the sink abstraction for the cleaned table and a
// small registry of sink kinds. Concrete backends register themselves from
// init functions; the wiring layer imports storage/all to enable them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"worldpop/internal/table"
)

// ErrUnsupportedKind is returned by New for kinds nobody registered.
var ErrUnsupportedKind = errors.New("unsupported storage.kind")

// Result reports what a Write persisted.
type Result struct {
	Rows   int    // data rows written, header excluded
	Bytes  int64  // bytes written to the destination
	Digest uint64 // xxh3 digest of those bytes
}

// Repository persists a table.
type Repository interface {
	Write(ctx context.Context, t *table.Table) (Result, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind string

	// Path is the destination file.
	Path string

	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM bool
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w=%s", ErrUnsupportedKind, cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
