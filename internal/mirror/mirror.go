// Package mirror implements the pimirror copy loop: capture a frame
// from the source display, scale it to the destination geometry and
// write it out, at a fixed frame rate.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/pimirror/internal/capture"
	"github.com/jmylchreest/pimirror/internal/config"
	"github.com/jmylchreest/pimirror/internal/display"
	"github.com/jmylchreest/pimirror/internal/scale"
)

// Sink receives mirrored frames.
type Sink interface {
	// Info returns the destination geometry and pixel format.
	Info() display.Info

	// WriteFrame blits a destination-sized frame to the device.
	WriteFrame(*image.RGBA) error

	// Close releases the sink.
	Close() error
}

// Engine drives capture, scale and write for one mirror. The loop is
// single threaded: a frame is fully copied before the next capture
// starts, and shutdown is a flag checked between frames.
type Engine struct {
	mu     sync.RWMutex
	logger *slog.Logger

	source  capture.Source
	sink    Sink
	scaler  *scale.Scaler
	limiter *Limiter
	stats   *Collector

	frame *image.RGBA // destination sized, reused every frame
	once  bool
}

// Options configure an Engine beyond its source and sink.
type Options struct {
	Scaler  *scale.Scaler
	Limiter *Limiter
	Stats   *Collector
	Logger  *slog.Logger
	Once    bool // copy a single frame and return
}

// NewEngine creates an Engine copying from source to sink.
func NewEngine(source capture.Source, sink Sink, opts Options) (*Engine, error) {
	if source == nil {
		return nil, errors.New("capture source is required")
	}
	if sink == nil {
		return nil, errors.New("output sink is required")
	}

	if opts.Scaler == nil {
		opts.Scaler = scale.New(scale.FilterNearest)
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter(DefaultRate)
	}
	if opts.Stats == nil {
		opts.Stats = NewCollector()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Engine{
		logger:  opts.Logger,
		source:  source,
		sink:    sink,
		scaler:  opts.Scaler,
		limiter: opts.Limiter,
		stats:   opts.Stats,
		frame:   display.NewFrame(sink.Info()),
		once:    opts.Once,
	}, nil
}

// Limiter returns the engine's rate limiter.
func (e *Engine) Limiter() *Limiter {
	return e.limiter
}

// Stats returns the engine's run counters.
func (e *Engine) Stats() *Collector {
	return e.stats
}

// Run copies frames until the context is cancelled, a single frame has
// been copied in once mode, or a display operation fails. Display
// failures are returned rather than retried; the caller decides whether
// that is fatal.
func (e *Engine) Run(ctx context.Context) error {
	src := e.source.Info()
	dst := e.sink.Info()

	e.logger.Info("copying",
		"from", src.String(),
		"to", dst.String(),
		"fps", e.limiter.Rate())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		start := time.Now()

		img, err := e.source.Capture()
		if err != nil {
			return fmt.Errorf("failed to capture display %s: %w", src.String(), err)
		}

		e.mu.RLock()
		scaler := e.scaler
		e.mu.RUnlock()
		scaler.Apply(e.frame, img)

		if err := e.sink.WriteFrame(e.frame); err != nil {
			return fmt.Errorf("failed to write display %s: %w", dst.String(), err)
		}

		e.stats.CountFrame(len(e.frame.Pix))

		if e.once {
			return nil
		}

		if e.limiter.Pace(start) {
			e.stats.CountOverrun()
		}
	}
}

// UpdateConfig applies a reloaded configuration to the running loop.
// Frame rate and scale filter take effect immediately; source and
// destination displays are fixed for the lifetime of the engine.
func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.limiter.SetRate(cfg.Output.FPS)

	e.mu.RLock()
	current := e.scaler.Filter()
	e.mu.RUnlock()

	if filter, err := scale.ParseFilter(cfg.Output.ScaleFilter); err == nil && filter != current {
		e.mu.Lock()
		e.scaler = scale.New(filter)
		e.mu.Unlock()
		e.logger.Info("scale filter changed", "filter", filter)
	}

	if cfg.Source.Display != e.source.Info().Display || cfg.Output.Framebuffer != e.sink.Info().Display {
		e.logger.Warn("source and destination changes require a restart")
	}

	e.logger.Debug("configuration applied", "fps", e.limiter.Rate())
}
