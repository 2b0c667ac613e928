package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-silencecut/internal/audio"
	"github.com/alnah/go-silencecut/internal/format"
	"github.com/alnah/go-silencecut/internal/interval"
)

// Source provides the decoded audio of one recording.
// LoadTrack must release any temporary resources before it returns.
type Source interface {
	Duration(ctx context.Context) (time.Duration, error)
	LoadTrack(ctx context.Context, start, end time.Duration) (*audio.Track, error)
}

// Analysis is the outcome of silence detection and planning for one recording.
type Analysis struct {
	Duration time.Duration
	Silences []interval.Interval
	Keep     []interval.Interval
	// Chunks is the number of analysis windows, 0 when the track was analysed whole.
	Chunks int
}

// Removed returns the total silent duration.
func (a *Analysis) Removed() time.Duration { return interval.Total(a.Silences) }

// Kept returns the total duration of the output.
func (a *Analysis) Kept() time.Duration { return interval.Total(a.Keep) }

// Orchestrator runs silence detection over recordings of any length.
type Orchestrator struct {
	cfg      Config
	detector *audio.Detector
	logger   logrus.FieldLogger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator for cfg.
func New(cfg Config, opts ...Option) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}

	detector, err := audio.NewDetector(
		audio.WithThresholdDB(cfg.ThresholdDB),
		audio.WithMinSilence(cfg.MinSilence),
		audio.WithSeekStep(cfg.SeekStep),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	o := &Orchestrator{
		cfg:      cfg,
		detector: detector,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() Config { return o.cfg }

// Analyze detects the silences of src and plans the segments to keep.
func (o *Orchestrator) Analyze(ctx context.Context, src Source) (*Analysis, error) {
	total, err := src.Duration(ctx)
	if err != nil {
		return nil, fmt.Errorf("read duration: %w", err)
	}

	a := &Analysis{Duration: total}
	if total > o.cfg.ChunkModeThreshold {
		a.Silences, a.Chunks, err = o.detectChunked(ctx, src, total)
	} else {
		a.Silences, err = o.detectWhole(ctx, src, total)
	}
	if err != nil {
		return nil, err
	}

	a.Keep, err = interval.Plan(a.Silences, total)
	if err != nil {
		return nil, err
	}

	o.logger.WithFields(logrus.Fields{
		"duration": format.Duration(total),
		"silences": len(a.Silences),
		"segments": len(a.Keep),
		"removed":  format.Percent(a.Removed(), total),
	}).Info("analysis complete")
	return a, nil
}

// DetectSilences returns the merged silences of src and its duration.
func (o *Orchestrator) DetectSilences(ctx context.Context, src Source) ([]interval.Interval, time.Duration, error) {
	a, err := o.Analyze(ctx, src)
	if err != nil {
		return nil, 0, err
	}
	return a.Silences, a.Duration, nil
}

// detectWhole analyses the full track in one pass.
func (o *Orchestrator) detectWhole(ctx context.Context, src Source, total time.Duration) ([]interval.Interval, error) {
	o.logger.WithField("duration", format.Duration(total)).Debug("detecting silences in one pass")

	track, err := src.LoadTrack(ctx, 0, total)
	if err != nil {
		return nil, fmt.Errorf("load track: %w", err)
	}
	silences, err := o.detector.Detect(track)
	if err != nil {
		return nil, err
	}
	silences = extendToEnd(silences, track.Duration(), total)
	return interval.Clamp(silences, total), nil
}

// detectChunked analyses fixed windows concurrently and fuses their results.
// Results are stored by chunk index, so the outcome does not depend on the
// order in which chunks finish.
func (o *Orchestrator) detectChunked(ctx context.Context, src Source, total time.Duration) ([]interval.Interval, int, error) {
	chunks, err := audio.Partition(total, o.cfg.ChunkWindow, o.cfg.ChunkOverlap)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	o.logger.WithFields(logrus.Fields{
		"duration": format.Duration(total),
		"chunks":   len(chunks),
		"parallel": o.cfg.Parallel,
	}).Info("detecting silences in chunks")

	results := make([][]interval.Interval, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Parallel)

	for _, c := range chunks {
		g.Go(func() error {
			found, err := o.detectChunk(gctx, src, c, total)
			if err != nil {
				return fmt.Errorf("%s: %w", c, err)
			}
			results[c.Index] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var all []interval.Interval
	for _, r := range results {
		all = append(all, r...)
	}
	merged, err := interval.Merge(interval.Clamp(all, total))
	if err != nil {
		return nil, 0, fmt.Errorf("fuse chunk silences: %w", err)
	}
	return interval.DropShorter(merged, o.detector.MinSilence()), len(chunks), nil
}

// detectChunk analyses one window and returns its silences on the global timeline.
func (o *Orchestrator) detectChunk(ctx context.Context, src Source, c audio.Chunk, total time.Duration) ([]interval.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	track, err := src.LoadTrack(ctx, c.ExtractStart, c.ExtractEnd)
	if err != nil {
		return nil, fmt.Errorf("load track: %w", err)
	}
	local, err := o.detector.DetectWindow(track, c.OpenStart(), c.OpenEnd(total))
	if err != nil {
		return nil, err
	}
	local = extendToEnd(local, track.Duration(), c.ExtractEnd-c.ExtractStart)

	o.logger.WithFields(logrus.Fields{
		"chunk":    c.Index,
		"silences": len(local),
	}).Debug("chunk analysed")
	return interval.Translate(local, c.ExtractStart), nil
}

// extendToEnd stretches a silence that reaches the last decoded sample out to
// want. Decoded audio often stops a few milliseconds before the container
// duration, and that gap must not survive as a keep-segment.
func extendToEnd(silences []interval.Interval, trackEnd, want time.Duration) []interval.Interval {
	n := len(silences)
	if n == 0 || trackEnd >= want || silences[n-1].End != trackEnd {
		return silences
	}
	out := slices.Clone(silences)
	out[n-1].End = want
	return out
}

// Run analyses src and writes the recording without its silences to dst.
// It returns ErrEmptyResult, and writes nothing, when the recording is entirely silent.
func (o *Orchestrator) Run(ctx context.Context, src Source, rec Reconstructor, dst string) (*Analysis, error) {
	a, err := o.Analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := Reconstruct(ctx, rec, a.Keep, dst); err != nil {
		if errors.Is(err, ErrEmptyResult) {
			return a, err
		}
		return a, fmt.Errorf("reconstruct: %w", err)
	}
	return a, nil
}
