package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-silencecut/internal/audio"
)

// analysisSampleRate is the rate audio is resampled to for silence analysis.
// Loudness detection needs no more bandwidth than speech recognition does.
const analysisSampleRate = 16000

// Source reads a media file through FFmpeg for silence analysis.
// The duration is probed once and cached. Each LoadTrack call extracts the
// requested range as mono PCM WAV into a temporary file, decodes it and
// removes the file before returning.
type Source struct {
	exec       *Executor
	ffmpegPath string
	inputPath  string
	tempDir    string
	logger     logrus.FieldLogger

	once     sync.Once
	duration time.Duration
	probeErr error
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithSourceExecutor sets the executor used to run FFmpeg.
func WithSourceExecutor(e *Executor) SourceOption {
	return func(s *Source) { s.exec = e }
}

// WithSourceTempDir sets the directory for temporary extracts.
// Default: os.TempDir().
func WithSourceTempDir(dir string) SourceOption {
	return func(s *Source) { s.tempDir = dir }
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l logrus.FieldLogger) SourceOption {
	return func(s *Source) { s.logger = l }
}

// NewSource creates a Source for inputPath.
func NewSource(ffmpegPath, inputPath string, opts ...SourceOption) *Source {
	s := &Source{
		exec:       NewExecutor(),
		ffmpegPath: ffmpegPath,
		inputPath:  inputPath,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the media file this source reads.
func (s *Source) Path() string { return s.inputPath }

// Duration returns the media duration, probing it on first use.
func (s *Source) Duration(ctx context.Context) (time.Duration, error) {
	s.once.Do(func() {
		d, err := Probe(ctx, s.exec, s.ffmpegPath, s.inputPath)
		if err != nil {
			s.probeErr = fmt.Errorf("%w: %w", audio.ErrDecode, err)
			return
		}
		s.duration = d
		s.logger.WithField("duration", d).Debug("probed media duration")
	})
	return s.duration, s.probeErr
}

// LoadTrack decodes [start, end) of the media as a mono track.
// The temporary extract is removed on every path out of this method.
func (s *Source) LoadTrack(ctx context.Context, start, end time.Duration) (track *audio.Track, err error) {
	f, err := os.CreateTemp(s.tempDir, "silencecut-extract-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create extract file: %w", err)
	}
	path := f.Name()
	_ = f.Close()

	defer func() {
		if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
			err = multierror.Append(err, fmt.Errorf("remove extract %s: %w", path, rerr))
			track = nil
		}
	}()

	args := []string{
		"-y", "-hide_banner",
		"-ss", formatTime(start),
		"-to", formatTime(end),
		"-i", s.inputPath,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprint(analysisSampleRate),
		"-c:a", "pcm_s16le",
		"-f", "wav",
		path,
	}
	if err := s.exec.Run(ctx, s.ffmpegPath, args); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: extract %s-%s: %w", audio.ErrDecode, formatTime(start), formatTime(end), err)
	}

	rf, err := os.Open(path) // #nosec G304 -- path is our own temp file
	if err != nil {
		return nil, fmt.Errorf("open extract: %w", err)
	}
	defer func() { _ = rf.Close() }()

	track, err = audio.DecodeWAV(rf)
	if err != nil {
		return nil, fmt.Errorf("decode %s-%s: %w", formatTime(start), formatTime(end), err)
	}
	return track, nil
}
