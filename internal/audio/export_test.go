package audio

import "github.com/alnah/go-silencecut/internal/interval"

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// NonSilentRuns exports nonSilentRuns for testing.
func (d *Detector) NonSilentRuns(track *Track) ([]interval.Interval, error) {
	return d.nonSilentRuns(track)
}

// SampleIndex exports sampleIndex for testing.
var SampleIndex = sampleIndex
