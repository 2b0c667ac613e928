// Package interval implements the time-interval algebra used to turn detected
// silences into the segments of a recording that are kept.
//
// All functions are pure: they never mutate their inputs and perform no I/O.
package interval

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

// Interval is a half-open span [Start, End) on a media timeline.
// A valid Interval satisfies 0 <= Start < End.
type Interval struct {
	Start time.Duration
	End   time.Duration
}

// New returns the interval [start, end), or ErrInvalid if the bounds
// do not satisfy 0 <= start < end.
func New(start, end time.Duration) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// Seconds builds an interval from float seconds. Intended for tests and
// user-facing input; it panics on invalid bounds.
func Seconds(start, end float64) Interval {
	iv, err := New(fromSeconds(start), fromSeconds(end))
	if err != nil {
		panic(err)
	}
	return iv
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Validate reports whether the interval satisfies 0 <= Start < End.
func (iv Interval) Validate() error {
	if iv.Start < 0 {
		return fmt.Errorf("%w: negative start %v", ErrInvalid, iv.Start)
	}
	if iv.End <= iv.Start {
		return fmt.Errorf("%w: end %v <= start %v", ErrInvalid, iv.End, iv.Start)
	}
	return nil
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End - iv.Start
}

// Translate shifts the interval by offset.
func (iv Interval) Translate(offset time.Duration) Interval {
	return Interval{Start: iv.Start + offset, End: iv.End + offset}
}

// Contains reports whether t lies in [Start, End).
func (iv Interval) Contains(t time.Duration) bool {
	return t >= iv.Start && t < iv.End
}

// String formats the interval in seconds with millisecond precision.
func (iv Interval) String() string {
	return fmt.Sprintf("[%.3fs, %.3fs)", iv.Start.Seconds(), iv.End.Seconds())
}

// Compare orders intervals by Start, then End.
func Compare(a, b Interval) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.End, b.End)
}

// Merge returns the union of ivs as a sorted sequence of disjoint intervals.
// Intervals that overlap or touch (next.Start <= current.End) collapse into one.
// The result does not depend on the order of ivs, and Merge(Merge(x)) == Merge(x).
// Any interval violating 0 <= Start < End yields ErrInvalid.
func Merge(ivs []Interval) ([]Interval, error) {
	if len(ivs) == 0 {
		return nil, nil
	}
	for i, iv := range ivs {
		if err := iv.Validate(); err != nil {
			return nil, fmt.Errorf("merge interval %d: %w", i, err)
		}
	}

	sorted := slices.Clone(ivs)
	slices.SortFunc(sorted, Compare)

	merged := make([]Interval, 0, len(sorted))
	merged = append(merged, sorted[0])
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			last.End = max(last.End, iv.End)
			continue
		}
		merged = append(merged, iv)
	}
	return merged, nil
}

// Translate shifts every interval by offset.
func Translate(ivs []Interval, offset time.Duration) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	out := make([]Interval, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.Translate(offset)
	}
	return out
}

// DropShorter returns the intervals whose duration is at least minDuration.
func DropShorter(ivs []Interval, minDuration time.Duration) []Interval {
	var out []Interval
	for _, iv := range ivs {
		if iv.Duration() >= minDuration {
			out = append(out, iv)
		}
	}
	return out
}

// Clamp trims every interval to [0, total] and drops those left empty.
func Clamp(ivs []Interval, total time.Duration) []Interval {
	var out []Interval
	for _, iv := range ivs {
		iv.Start = max(iv.Start, 0)
		iv.End = min(iv.End, total)
		if iv.End > iv.Start {
			out = append(out, iv)
		}
	}
	return out
}

// Total returns the summed duration of ivs.
func Total(ivs []Interval) time.Duration {
	var sum time.Duration
	for _, iv := range ivs {
		sum += iv.Duration()
	}
	return sum
}

// ValidateDisjoint checks that ivs is sorted, non-overlapping, and every
// interval lies inside [0, total].
func ValidateDisjoint(ivs []Interval, total time.Duration) error {
	if total < 0 {
		return fmt.Errorf("%w: negative total duration %v", ErrInvalid, total)
	}
	var prevEnd time.Duration
	for i, iv := range ivs {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("interval %d: %w", i, err)
		}
		if iv.End > total {
			return fmt.Errorf("%w: interval %d %s ends after %v", ErrInvalid, i, iv, total)
		}
		if i > 0 && iv.Start < prevEnd {
			return fmt.Errorf("%w: interval %d %s overlaps or precedes its predecessor", ErrInvalid, i, iv)
		}
		prevEnd = iv.End
	}
	return nil
}

// Complement returns the parts of [0, total) not covered by ivs.
// ivs must be sorted, disjoint and inside [0, total].
func Complement(ivs []Interval, total time.Duration) ([]Interval, error) {
	if err := ValidateDisjoint(ivs, total); err != nil {
		return nil, err
	}

	var out []Interval
	cursor := time.Duration(0)
	for _, iv := range ivs {
		if iv.Start > cursor {
			out = append(out, Interval{Start: cursor, End: iv.Start})
		}
		cursor = iv.End
	}
	if cursor < total {
		out = append(out, Interval{Start: cursor, End: total})
	}
	return out, nil
}

// Plan returns the keep-intervals for a recording of length total given its
// merged silences. An empty result means the whole recording is silent; callers
// must treat that as a terminal condition rather than fabricate a segment.
func Plan(silences []Interval, total time.Duration) ([]Interval, error) {
	keep, err := Complement(silences, total)
	if err != nil {
		return nil, fmt.Errorf("plan keep segments: %w", err)
	}
	return keep, nil
}
