// Package flightrecorder keeps a rolling execution trace in memory and writes it to disk when a request runs
// out of time, so slow program generation or database contention can be inspected after the fact.
package flightrecorder

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync"
	"time"

	"github.com/styrkr/styrkr/internal/errors"
)

const (
	defaultMinAge   = 10 * time.Second
	defaultMaxBytes = 16 << 20
	defaultCooldown = 15 * time.Minute
)

// Recorder writes at most one trace per cooldown period.
type Recorder struct {
	logger   *slog.Logger
	recorder *trace.FlightRecorder
	dir      string
	cooldown time.Duration

	mu          sync.Mutex
	lastCapture time.Time
}

// Config configures a [Recorder]. Zero durations and sizes use the defaults.
type Config struct {
	Logger   *slog.Logger
	Dir      string
	MinAge   time.Duration
	MaxBytes uint64
	Cooldown time.Duration
}

// New creates the trace directory when missing and returns a stopped recorder.
func New(cfg Config) (*Recorder, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.Dir == "" {
		return nil, errors.New("trace directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil { //nolint:mnd // owner and group
		return nil, errors.Wrap(err, "create trace directory", slog.String("dir", cfg.Dir))
	}

	r := &Recorder{
		logger: cfg.Logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   cmp.Or(cfg.MinAge, defaultMinAge),
			MaxBytes: cmp.Or(cfg.MaxBytes, defaultMaxBytes),
		}),
		dir:         cfg.Dir,
		cooldown:    cmp.Or(cfg.Cooldown, defaultCooldown),
		mu:          sync.Mutex{},
		lastCapture: time.Time{},
	}
	return r, nil
}

// Start begins recording.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("dir", r.dir), slog.Duration("cooldown", r.cooldown))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.recorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// Capture writes the recorded trace to <reason>-<timestamp>.trace unless a trace was written within the
// cooldown. It reports the written file, or "" when nothing was written.
func (r *Recorder) Capture(ctx context.Context, reason string) string {
	now := time.Now()

	r.mu.Lock()
	if !r.lastCapture.IsZero() && now.Sub(r.lastCapture) < r.cooldown {
		r.mu.Unlock()
		r.logger.LogAttrs(ctx, slog.LevelDebug, "trace capture skipped",
			slog.String("reason", reason), slog.Time("last_capture", r.lastCapture))
		return ""
	}
	r.lastCapture = now
	r.mu.Unlock()

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.trace", reason, now.UTC().Format("20060102-150405.000")))
	n, err := r.writeFile(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "capture trace", errors.SlogError(err))
		return ""
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured trace",
		slog.String("reason", reason), slog.String("file", path), slog.Int64("bytes", n))
	return path
}

func (r *Recorder) writeFile(path string) (_ int64, err error) {
	f, err := os.Create(path) //nolint:gosec // path is built from the configured directory.
	if err != nil {
		return 0, errors.Wrap(err, "create trace file", slog.String("file", path))
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close trace file", slog.String("file", path))
		}
	}()
	n, err := r.recorder.WriteTo(f)
	if err != nil {
		return 0, errors.Wrap(err, "write trace", slog.String("file", path))
	}
	return n, nil
}
