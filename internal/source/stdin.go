package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up,
// the same limit bufio uses.
const maxEmptyReads = 100

// ReaderSource reads chunks from an io.Reader.
type ReaderSource struct {
	r    io.Reader
	name string
	err  error // sticky error reported after trailing bytes
}

// NewReaderSource creates a source over r identified by name.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{r: r, name: name}
}

// NewStdinSource creates a source that reads from os.Stdin (pipe mode).
func NewStdinSource() *ReaderSource {
	return NewReaderSource(os.Stdin, "stdin")
}

// Name returns the source identifier.
func (s *ReaderSource) Name() string {
	return s.name
}

// ReadChunk performs one read of up to len(buf) bytes.
func (s *ReaderSource) ReadChunk(ctx context.Context, buf []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}

	if s.err != nil {
		return 0, s.err
	}
	if len(buf) == 0 {
		return 0, fmt.Errorf("read %s: empty buffer", s.name)
	}

	for range maxEmptyReads {
		n, err := s.r.Read(buf)
		if err != nil {
			if err != io.EOF {
				err = fmt.Errorf("read %s: %w", s.name, err)
			}
			// Deliver trailing bytes now, report the error on the next call.
			s.err = err
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("read %s: %w", s.name, io.ErrNoProgress)
}
