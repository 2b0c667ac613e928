package audio

import (
	"fmt"
	"time"

	"github.com/alnah/go-silencecut/internal/format"
)

// Default chunking parameters.
const (
	// DefaultChunkWindow is the analysis window used for long recordings.
	// 10 minutes of 16kHz mono audio is ~38MB of float samples.
	DefaultChunkWindow = 10 * time.Minute

	// DefaultChunkModeThreshold is the duration above which analysis is chunked.
	DefaultChunkModeThreshold = 30 * time.Minute
)

// Chunk is one analysis window of a longer timeline.
// Start/End tile the timeline contiguously; ExtractStart/ExtractEnd widen the
// window by the configured overlap and are what is actually decoded.
type Chunk struct {
	Index        int
	Start        time.Duration
	End          time.Duration
	ExtractStart time.Duration
	ExtractEnd   time.Duration
}

// Duration returns the logical length of this chunk.
func (c Chunk) Duration() time.Duration {
	return c.End - c.Start
}

// OpenStart reports whether the extract begins after the start of the timeline.
func (c Chunk) OpenStart() bool {
	return c.ExtractStart > 0
}

// OpenEnd reports whether the extract stops before the end of a timeline of length total.
func (c Chunk) OpenEnd(total time.Duration) bool {
	return c.ExtractEnd < total
}

// String returns a human-readable representation for logging.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d: %s-%s",
		c.Index,
		format.Duration(c.Start),
		format.Duration(c.End))
}

// Partition splits [0, total) into contiguous windows of the given size.
// The last window is truncated to the remaining length. Each extract range is
// widened by overlap on both sides, clamped to the timeline.
func Partition(total, window, overlap time.Duration) ([]Chunk, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: negative duration %v", ErrInvalidParams, total)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: chunk window %v must be positive", ErrInvalidParams, window)
	}
	if overlap < 0 || overlap >= window {
		return nil, fmt.Errorf("%w: overlap %v must be in [0, %v)", ErrInvalidParams, overlap, window)
	}

	var chunks []Chunk
	for i := 0; ; i++ {
		start := time.Duration(i) * window
		if start >= total {
			break
		}
		end := min(start+window, total)

		chunks = append(chunks, Chunk{
			Index:        i,
			Start:        start,
			End:          end,
			ExtractStart: max(start-overlap, 0),
			ExtractEnd:   min(end+overlap, total),
		})
	}
	return chunks, nil
}
