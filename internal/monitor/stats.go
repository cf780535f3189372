// Package monitor provides statistics collection for the copy pipeline.
package monitor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats collects copy metrics in a lock-free manner.
type Stats struct {
	bytesRead    atomic.Uint64
	chunks       atomic.Uint64
	bytesWritten atomic.Uint64
	writes       atomic.Uint64
	startTime    time.Time
}

// NewStats creates a new statistics collector.
func NewStats() *Stats {
	return &Stats{
		startTime: time.Now(),
	}
}

// RecordChunk counts one chunk of n bytes read from the source.
func (s *Stats) RecordChunk(n int) {
	s.chunks.Add(1)
	s.bytesRead.Add(uint64(n))
}

// RecordWrite counts one completed sink write of n bytes.
// Safe to call from concurrent writers.
func (s *Stats) RecordWrite(n int) {
	s.writes.Add(1)
	s.bytesWritten.Add(uint64(n))
}

// BytesRead returns the total number of input bytes.
func (s *Stats) BytesRead() uint64 {
	return s.bytesRead.Load()
}

// Chunks returns the number of chunks read, which equals the number of waves.
func (s *Stats) Chunks() uint64 {
	return s.chunks.Load()
}

// BytesWritten returns the total bytes written across all sinks.
func (s *Stats) BytesWritten() uint64 {
	return s.bytesWritten.Load()
}

// Writes returns the number of completed sink writes.
func (s *Stats) Writes() uint64 {
	return s.writes.Load()
}

// Elapsed returns the time since monitoring started.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// Rate returns input bytes per second.
func (s *Stats) Rate() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(s.BytesRead()) / elapsed
}

// Summary returns a formatted summary string.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"── Summary ──\n"+
			"  Read:       %s in %d chunks\n"+
			"  Written:    %s in %d writes\n"+
			"  Duration:   %s\n"+
			"  Throughput: %s/s\n"+
			"─────────────",
		humanize.Bytes(s.BytesRead()), s.Chunks(),
		humanize.Bytes(s.BytesWritten()), s.Writes(),
		s.Elapsed().Round(time.Millisecond),
		humanize.Bytes(uint64(s.Rate())),
	)
}
