package types

import (
	"context"
	"io"
)

// FileStore persists whole files under caller-supplied names.
type FileStore interface {
	// Store creates or truncates name and writes data in full.
	Store(ctx context.Context, name string, data []byte) error
	// Open returns an unbuffered reader over the stored bytes. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
