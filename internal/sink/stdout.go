package sink

import (
	"io"
	"os"
	"sync"
)

// StdoutSink writes chunks to the process's standard output. One instance
// is shared by the implicit stdout destination and every "-" argument, so
// writes are serialized to keep each chunk contiguous.
type StdoutSink struct {
	mu        sync.Mutex
	w         io.Writer
	closeOnce sync.Once
	closeErr  error
}

// NewStdoutSink creates a sink over w. If w is nil, os.Stdout is used.
func NewStdoutSink(w io.Writer) *StdoutSink {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutSink{w: w}
}

// Write outputs one chunk.
func (s *StdoutSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFull(s.w, p)
}

// Close closes the underlying writer if it is an io.Closer. Aliases share
// the instance, so only the first call has any effect.
func (s *StdoutSink) Close() error {
	s.closeOnce.Do(func() {
		if c, ok := s.w.(io.Closer); ok {
			s.closeErr = c.Close()
		}
	})
	return s.closeErr
}

// Name returns the sink identifier.
func (s *StdoutSink) Name() string { return "stdout" }
