package audio

import (
	"fmt"
	"time"

	"github.com/alnah/go-silencecut/internal/interval"
)

// Default detection parameters.
const (
	// DefaultThresholdDB is the level at or below which audio counts as silent.
	DefaultThresholdDB = -50.0

	// DefaultMinSilence is the shortest silence that is reported.
	DefaultMinSilence = 500 * time.Millisecond

	// DefaultSeekStep is the stride of the analysis window.
	DefaultSeekStep = time.Millisecond
)

// Detector finds silent intervals in a Track.
//
// A window of MinSilence length slides across the track in SeekStep
// increments. A window whose RMS level is at or below the threshold is silent;
// the union of silent windows is the silent part of the track and its
// complement forms the non-silent runs. Silence is then reported as the
// complement of those runs, dropping anything shorter than MinSilence.
type Detector struct {
	thresholdDB float64
	minSilence  time.Duration
	seekStep    time.Duration
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThresholdDB sets the silence threshold in dBFS (negative values).
// Default: -50dB.
func WithThresholdDB(db float64) DetectorOption {
	return func(d *Detector) {
		d.thresholdDB = db
	}
}

// WithMinSilence sets the minimum silence duration to report.
// Default: 500ms.
func WithMinSilence(dur time.Duration) DetectorOption {
	return func(d *Detector) {
		d.minSilence = dur
	}
}

// WithSeekStep sets the analysis window stride. MinSilence is rounded down
// to a whole number of steps when sizing the window.
// Default: 1ms.
func WithSeekStep(step time.Duration) DetectorOption {
	return func(d *Detector) {
		d.seekStep = step
	}
}

// NewDetector creates a Detector with functional options.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	d := &Detector{
		thresholdDB: DefaultThresholdDB,
		minSilence:  DefaultMinSilence,
		seekStep:    DefaultSeekStep,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.thresholdDB > 0 {
		return nil, fmt.Errorf("%w: threshold %.1fdB must not be above full scale", ErrInvalidParams, d.thresholdDB)
	}
	if d.minSilence <= 0 {
		return nil, fmt.Errorf("%w: min silence %v must be positive", ErrInvalidParams, d.minSilence)
	}
	if d.seekStep <= 0 || d.seekStep > d.minSilence {
		return nil, fmt.Errorf("%w: seek step %v must be in (0, %v]", ErrInvalidParams, d.seekStep, d.minSilence)
	}
	return d, nil
}

// ThresholdDB returns the configured threshold.
func (d *Detector) ThresholdDB() float64 { return d.thresholdDB }

// MinSilence returns the configured minimum silence duration.
func (d *Detector) MinSilence() time.Duration { return d.minSilence }

// Detect returns the silent intervals of track, sorted and disjoint, each at
// least MinSilence long and inside [0, track.Duration()].
// An empty track yields no intervals.
func (d *Detector) Detect(track *Track) ([]interval.Interval, error) {
	return d.DetectWindow(track, false, false)
}

// DetectWindow is Detect for a track cut out of a longer timeline.
// openStart and openEnd mark edges that are window boundaries rather than the
// true start or end of the recording: silences touching an open edge are kept
// regardless of length, because they may continue in the neighbouring window.
// The caller must merge neighbouring results and apply MinSilence afterwards.
func (d *Detector) DetectWindow(track *Track, openStart, openEnd bool) ([]interval.Interval, error) {
	if track == nil || len(track.Samples) == 0 {
		return nil, nil
	}
	if track.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, track.SampleRate)
	}

	total := track.Duration()
	runs, err := d.nonSilentRuns(track)
	if err != nil {
		return nil, err
	}

	silences, err := interval.Complement(runs, total)
	if err != nil {
		return nil, fmt.Errorf("derive silences: %w", err)
	}

	kept := silences[:0]
	for _, s := range silences {
		touchesOpenEdge := (openStart && s.Start == 0) || (openEnd && s.End == total)
		if touchesOpenEdge || s.Duration() >= d.minSilence {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

// nonSilentRuns classifies the track into maximal non-silent runs.
func (d *Detector) nonSilentRuns(track *Track) ([]interval.Interval, error) {
	silent := d.silentRanges(track)
	runs, err := interval.Complement(silent, track.Duration())
	if err != nil {
		return nil, fmt.Errorf("derive non-silent runs: %w", err)
	}
	return runs, nil
}

// silentRanges returns the union of all silent analysis windows.
func (d *Detector) silentRanges(track *Track) []interval.Interval {
	total := track.Duration()
	step := d.seekStep
	cells := int(total / step)
	width := max(int(d.minSilence/step), 1)
	if cells < width {
		return nil
	}

	// Sum of squares per step-sized cell, accumulated as a prefix sum so any
	// window's energy is one subtraction.
	prefix := make([]float64, cells+1)
	bounds := make([]int, cells+1)
	for c := range cells + 1 {
		bounds[c] = sampleIndex(time.Duration(c)*step, track.SampleRate)
	}
	for c := range cells {
		var sum float64
		for _, s := range track.Samples[bounds[c]:bounds[c+1]] {
			sum += float64(s) * float64(s)
		}
		prefix[c+1] = prefix[c] + sum
	}

	amp := DBToAmplitude(d.thresholdDB)
	limit := amp * amp
	window := time.Duration(width) * step

	var ranges []interval.Interval
	for k := 0; k+width <= cells; k++ {
		n := bounds[k+width] - bounds[k]
		if n == 0 {
			continue
		}
		if (prefix[k+width]-prefix[k])/float64(n) > limit {
			continue
		}
		start := time.Duration(k) * step
		end := start + window
		if last := len(ranges) - 1; last >= 0 && start <= ranges[last].End {
			ranges[last].End = end
			continue
		}
		ranges = append(ranges, interval.Interval{Start: start, End: end})
	}

	// The grid stops short of the track end by less than one step; a silent
	// range reaching the last cell extends to the true end.
	if last := len(ranges) - 1; last >= 0 && total-ranges[last].End < step {
		ranges[last].End = total
	}
	return ranges
}
