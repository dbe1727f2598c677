// Package datasource defines the endpoints the pipeline reads from and
// writes to.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw input stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink yields a writable destination.
type Sink interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
