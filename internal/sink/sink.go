// Package sink defines the Sink interface for pipeline output.
package sink

import "io"

// Sink receives raw chunks and writes them to an output destination.
type Sink interface {
	// Write outputs one chunk. A short write is reported as io.ErrShortWrite.
	Write(p []byte) (int, error)

	// Close releases resources held by the sink.
	Close() error

	// Name returns a human-readable identifier for this sink.
	Name() string
}

// writeFull writes p to w and turns a short count into io.ErrShortWrite.
func writeFull(w io.Writer, p []byte) (int, error) {
	n, err := w.Write(p)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}
