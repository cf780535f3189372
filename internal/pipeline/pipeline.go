// Package pipeline orchestrates Source → Sink fan-out copying.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Geun-Oh/gtee/internal/buffer"
	"github.com/Geun-Oh/gtee/internal/monitor"
	"github.com/Geun-Oh/gtee/internal/options"
	"github.com/Geun-Oh/gtee/internal/sink"
	"github.com/Geun-Oh/gtee/internal/source"
)

// Config holds pipeline configuration.
type Config struct {
	Source       source.Source
	Stdout       *sink.StdoutSink
	Opener       *sink.Opener
	Destinations []string
	ChunkSize    int
	Stats        *monitor.Stats // optional
	Logger       *slog.Logger   // optional
}

// NewConfig builds a pipeline configuration from parsed options. A nil
// opener means destinations are opened on the host filesystem.
func NewConfig(opts options.Config, src source.Source, stdout *sink.StdoutSink, opener *sink.Opener) *Config {
	if opener == nil {
		opener = sink.NewOpener(nil, stdout, opts.Append)
	}
	return &Config{
		Source:       src,
		Stdout:       stdout,
		Opener:       opener,
		Destinations: opts.Destinations,
		ChunkSize:    opts.ChunkSize,
	}
}

// Run opens every destination, copies the source to stdout and to each of
// them, and closes them all. If any destination fails to open, nothing is
// read and the *sink.OpenError is returned.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Source == nil {
		return fmt.Errorf("pipeline: source is required")
	}
	if cfg.Stdout == nil {
		return fmt.Errorf("pipeline: stdout sink is required")
	}
	if cfg.Opener == nil {
		return fmt.Errorf("pipeline: opener is required")
	}
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("pipeline: chunk size must be positive, got %d", cfg.ChunkSize)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dests, err := cfg.Opener.OpenAll(cfg.Destinations)
	if err != nil {
		return err
	}
	for _, s := range dests {
		logger.Debug("sink opened", "sink", s.Name())
	}

	// Stdout first, then every destination entry in argument order.
	sinks := make([]sink.Sink, 0, len(dests)+1)
	sinks = append(sinks, cfg.Stdout)
	sinks = append(sinks, dests...)

	copyErr := Copy(ctx, cfg.Source, sinks, cfg.ChunkSize, cfg.Stats)

	var closeErrs []error
	for _, s := range dests {
		if s == cfg.Stdout {
			continue
		}
		if err := s.Close(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("pipeline: close %s: %w", s.Name(), err))
		}
	}
	if err := cfg.Stdout.Close(); err != nil {
		closeErrs = append(closeErrs, fmt.Errorf("pipeline: close %s: %w", cfg.Stdout.Name(), err))
	}

	if cfg.Stats != nil {
		logger.Debug("copy finished",
			"source", cfg.Source.Name(),
			"sinks", len(sinks),
			"bytes", cfg.Stats.BytesRead(),
			"chunks", cfg.Stats.Chunks(),
			"elapsed", cfg.Stats.Elapsed(),
		)
	}

	if copyErr != nil {
		return copyErr
	}
	return errors.Join(closeErrs...)
}

// Copy runs the read/dispatch/write loop until src is exhausted. Each
// chunk is written to every sink concurrently as one wave; the next wave
// is dispatched only after the previous one has completed, while the read
// of the next chunk overlaps it. Memory is bounded by two chunk buffers.
// Copy does not close the sinks.
func Copy(ctx context.Context, src source.Source, sinks []sink.Sink, chunkSize int, stats *monitor.Stats) error {
	if chunkSize <= 0 {
		return fmt.Errorf("pipeline: chunk size must be positive, got %d", chunkSize)
	}
	bufs := buffer.NewDouble(chunkSize)

	var inflight *errgroup.Group // nil: vacuously complete
	wait := func() error {
		if inflight == nil {
			return nil
		}
		err := inflight.Wait()
		inflight = nil
		return err
	}

	for {
		n, err := src.ReadChunk(ctx, bufs.Fill())
		if err != nil {
			werr := wait()
			if err == io.EOF {
				return werr
			}
			if werr != nil {
				return werr
			}
			return fmt.Errorf("pipeline: %w", err)
		}

		if err := wait(); err != nil {
			return err
		}
		if stats != nil {
			stats.RecordChunk(n)
		}

		chunk := bufs.Swap(n)
		inflight = dispatch(sinks, chunk, stats)
	}
}

// dispatch starts one write per sink and returns without waiting.
func dispatch(sinks []sink.Sink, chunk []byte, stats *monitor.Stats) *errgroup.Group {
	g := new(errgroup.Group)
	for _, s := range sinks {
		g.Go(func() error {
			n, err := s.Write(chunk)
			if err != nil {
				return fmt.Errorf("pipeline: write to %s: %w", s.Name(), err)
			}
			if stats != nil {
				stats.RecordWrite(n)
			}
			return nil
		})
	}
	return g
}
