package pipeline

import (
	"fmt"
	"time"

	"github.com/alnah/go-silencecut/internal/audio"
)

// Config holds the detection and orchestration parameters of one run.
type Config struct {
	// ThresholdDB is the level at or below which audio is silent (dBFS, <= 0).
	ThresholdDB float64
	// MinSilence is the shortest silence that is removed.
	MinSilence time.Duration
	// SeekStep is the stride of the analysis window.
	SeekStep time.Duration
	// ChunkWindow is the length of each analysis window in chunk mode.
	ChunkWindow time.Duration
	// ChunkModeThreshold is the duration above which analysis is chunked.
	ChunkModeThreshold time.Duration
	// ChunkOverlap widens every chunk on both sides so silences straddling a
	// boundary are seen whole. Zero reproduces plain fixed windows.
	ChunkOverlap time.Duration
	// Parallel bounds how many chunks are analysed at once.
	Parallel int
}

// DefaultConfig returns the stock parameters.
func DefaultConfig() Config {
	return Config{
		ThresholdDB:        audio.DefaultThresholdDB,
		MinSilence:         audio.DefaultMinSilence,
		SeekStep:           audio.DefaultSeekStep,
		ChunkWindow:        audio.DefaultChunkWindow,
		ChunkModeThreshold: audio.DefaultChunkModeThreshold,
		Parallel:           1,
	}
}

// validate checks orchestration fields; detector fields are checked by audio.NewDetector.
func (c Config) validate() error {
	if c.ChunkWindow <= 0 {
		return fmt.Errorf("%w: chunk window %v must be positive", ErrInvalidConfig, c.ChunkWindow)
	}
	if c.ChunkModeThreshold < 0 {
		return fmt.Errorf("%w: chunk mode threshold %v must not be negative", ErrInvalidConfig, c.ChunkModeThreshold)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkWindow {
		return fmt.Errorf("%w: chunk overlap %v must be in [0, %v)", ErrInvalidConfig, c.ChunkOverlap, c.ChunkWindow)
	}
	if c.Parallel < 0 {
		return fmt.Errorf("%w: parallel %d must not be negative", ErrInvalidConfig, c.Parallel)
	}
	return nil
}
