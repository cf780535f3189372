// Package source defines the Source interface for chunked byte input.
package source

import (
	"context"
)

// Source fills caller-owned buffers with raw input bytes.
type Source interface {
	// ReadChunk reads up to len(buf) bytes into buf. It returns io.EOF with
	// n == 0 once input is exhausted. A non-zero n is always accompanied by
	// a nil error so the caller can dispatch the bytes before stopping.
	ReadChunk(ctx context.Context, buf []byte) (n int, err error)

	// Name returns a human-readable identifier for this source.
	Name() string
}
