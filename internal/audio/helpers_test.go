package audio_test

import (
	"time"

	"github.com/alnah/go-silencecut/internal/audio"
	"github.com/alnah/go-silencecut/internal/interval"
)

const testRate = 16000

// segment describes a stretch of synthetic audio.
type segment struct {
	dur  time.Duration
	loud bool
}

// synth builds a track from segments. Loud stretches are a +/-0.5 square
// wave (about -6dBFS), quiet stretches are digital silence.
func synth(segs ...segment) *audio.Track {
	var samples []float32
	for _, s := range segs {
		n := audio.SampleIndex(s.dur, testRate)
		for i := range n {
			var v float32
			if s.loud {
				v = 0.5
				if i%2 == 1 {
					v = -0.5
				}
			}
			samples = append(samples, v)
		}
	}
	return &audio.Track{Samples: samples, SampleRate: testRate}
}

func loud(d time.Duration) segment  { return segment{dur: d, loud: true} }
func quiet(d time.Duration) segment { return segment{dur: d} }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func span(startMS, endMS int) interval.Interval {
	return interval.Interval{Start: ms(startMS), End: ms(endMS)}
}

func equalIntervals(a, b []interval.Interval) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
