package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Track is a decoded mono waveform with samples normalized to [-1, 1].
// A Track is read-only once handed to a Detector.
type Track struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the length of the track.
func (t *Track) Duration() time.Duration {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return sampleTime(len(t.Samples), t.SampleRate)
}

// Slice returns the sub-track covering [start, end), clamped to the track.
// The returned track shares its sample storage with t.
func (t *Track) Slice(start, end time.Duration) *Track {
	lo := min(sampleIndex(max(start, 0), t.SampleRate), len(t.Samples))
	hi := min(sampleIndex(max(end, 0), t.SampleRate), len(t.Samples))
	lo = min(lo, hi)
	return &Track{Samples: t.Samples[lo:hi], SampleRate: t.SampleRate}
}

// sampleIndex converts a timestamp to the index of the first sample at or after it.
func sampleIndex(d time.Duration, rate int) int {
	return int(int64(d) * int64(rate) / int64(time.Second))
}

// sampleTime converts a sample count to a duration.
func sampleTime(n, rate int) time.Duration {
	return time.Duration(int64(n) * int64(time.Second) / int64(rate))
}

// DecodeWAV reads a PCM WAV stream into a mono Track.
// Multi-channel input is downmixed by averaging channels.
func DecodeWAV(r io.ReadSeeker) (*Track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", ErrDecode)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: read PCM data: %v", ErrDecode, err)
	}

	return trackFromPCM(buf, int(dec.BitDepth))
}

// trackFromPCM normalizes integer PCM to float samples and downmixes to mono.
func trackFromPCM(buf *goaudio.IntBuffer, bitDepth int) (*Track, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: missing PCM format", ErrDecode)
	}
	rate := buf.Format.SampleRate
	channels := buf.Format.NumChannels
	if rate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: invalid format (rate=%d, channels=%d)", ErrDecode, rate, channels)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
	}

	fullScale := float64(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := range frames {
		var sum float64
		for c := range channels {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = float32(sum / float64(channels) / fullScale)
	}

	return &Track{Samples: samples, SampleRate: rate}, nil
}

// DBToAmplitude converts a dBFS level to a linear amplitude relative to full scale.
func DBToAmplitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// RMSDB returns the RMS level of samples in dBFS, or -Inf for digital silence.
func RMSDB(samples []float32) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(rms)
}
