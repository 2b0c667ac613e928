package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-silencecut/internal/interval"
)

// audioOnlyExts lists containers written without a video stream.
var audioOnlyExts = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".oga":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// Reconstructor cuts kept ranges out of one media file and joins them.
// Clips and intermediate files live in a private temporary directory that is
// created on first use and removed by Cleanup.
type Reconstructor struct {
	exec       *Executor
	ffmpegPath string
	inputPath  string
	ext        string
	baseDir    string
	logger     logrus.FieldLogger

	mu      sync.Mutex
	workDir string
	created []string
	seq     int
}

// ReconstructorOption configures a Reconstructor.
type ReconstructorOption func(*Reconstructor)

// WithReconstructorExecutor sets the executor used to run FFmpeg.
func WithReconstructorExecutor(e *Executor) ReconstructorOption {
	return func(r *Reconstructor) { r.exec = e }
}

// WithReconstructorTempDir sets the parent of the working directory.
// Default: os.TempDir().
func WithReconstructorTempDir(dir string) ReconstructorOption {
	return func(r *Reconstructor) { r.baseDir = dir }
}

// WithReconstructorLogger sets the logger.
func WithReconstructorLogger(l logrus.FieldLogger) ReconstructorOption {
	return func(r *Reconstructor) { r.logger = l }
}

// NewReconstructor creates a Reconstructor reading from inputPath.
// Clips use the input's container format.
func NewReconstructor(ffmpegPath, inputPath string, opts ...ReconstructorOption) *Reconstructor {
	r := &Reconstructor{
		exec:       NewExecutor(),
		ffmpegPath: ffmpegPath,
		inputPath:  inputPath,
		ext:        strings.ToLower(filepath.Ext(inputPath)),
		logger:     logrus.StandardLogger(),
	}
	if r.ext == "" {
		r.ext = ".mp4"
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractSubrange re-encodes the [iv.Start, iv.End) range of the input into a new clip.
func (r *Reconstructor) ExtractSubrange(ctx context.Context, iv interval.Interval) (string, error) {
	if err := iv.Validate(); err != nil {
		return "", err
	}
	path, err := r.nextPath("clip", r.ext)
	if err != nil {
		return "", err
	}

	args := []string{
		"-y", "-hide_banner",
		"-ss", formatTime(iv.Start),
		"-to", formatTime(iv.End),
		"-i", r.inputPath,
	}
	args = append(args, r.encodingArgs()...)
	args = append(args, path)

	if err := r.exec.Run(ctx, r.ffmpegPath, args); err != nil {
		return "", fmt.Errorf("extract %s: %w", iv, err)
	}
	r.logger.WithField("range", iv.String()).Debug("extracted clip")
	return path, nil
}

// Concatenate joins clips in order.
// It first attempts a stream copy through the concat demuxer and falls back
// to re-encoding if the copy fails. A single clip is returned unchanged.
func (r *Reconstructor) Concatenate(ctx context.Context, clips []string) (string, error) {
	switch len(clips) {
	case 0:
		return "", ErrNoClips
	case 1:
		return clips[0], nil
	}

	list, err := r.writeConcatList(clips)
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	out, err := r.nextPath("joined", r.ext)
	if err != nil {
		return "", err
	}

	demux := []string{"-y", "-hide_banner", "-f", "concat", "-safe", "0", "-i", list}

	copyArgs := append(append([]string{}, demux...), "-c", "copy", out)
	err = r.exec.Run(ctx, r.ffmpegPath, copyArgs)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return "", err
	}
	r.logger.WithError(err).Warn("stream copy concat failed, re-encoding")

	encodeArgs := append(append([]string{}, demux...), r.encodingArgs()...)
	encodeArgs = append(encodeArgs, out)
	if err := r.exec.Run(ctx, r.ffmpegPath, encodeArgs); err != nil {
		return "", fmt.Errorf("concatenate %d clips: %w", len(clips), err)
	}
	return out, nil
}

// WriteOut moves clip to dst, creating the parent directory if needed.
// When a rename is not possible (another filesystem, or the clip is kept
// elsewhere) the content is copied.
func (r *Reconstructor) WriteOut(_ context.Context, clip, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.Rename(clip, dst); err == nil {
		return nil
	}
	return copyFile(clip, dst)
}

// Cleanup removes every temporary file this Reconstructor created.
// All removals are attempted; failures are reported together.
func (r *Reconstructor) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result *multierror.Error
	for _, p := range r.created {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			result = multierror.Append(result, err)
		}
	}
	if r.workDir != "" {
		if err := os.RemoveAll(r.workDir); err != nil {
			result = multierror.Append(result, err)
		}
	}
	r.created = nil
	r.workDir = ""
	return result.ErrorOrNil()
}

// encodingArgs returns the codec arguments for clips and re-encoded joins.
func (r *Reconstructor) encodingArgs() []string {
	if audioOnlyExts[r.ext] {
		return []string{"-vn"}
	}
	return []string{
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
	}
}

// nextPath reserves a new file name in the working directory.
func (r *Reconstructor) nextPath(kind, ext string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.workDir == "" {
		dir, err := os.MkdirTemp(r.baseDir, "go-silencecut-")
		if err != nil {
			return "", fmt.Errorf("create work directory: %w", err)
		}
		r.workDir = dir
	}
	r.seq++
	path := filepath.Join(r.workDir, fmt.Sprintf("%s-%04d%s", kind, r.seq, ext))
	r.created = append(r.created, path)
	return path, nil
}

// writeConcatList writes the concat demuxer input listing clips in order.
func (r *Reconstructor) writeConcatList(clips []string) (string, error) {
	path, err := r.nextPath("list", ".txt")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return "", fmt.Errorf("absolute path for %s: %w", clip, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// copyFile streams src into a new or truncated dst.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) // #nosec G304 -- src is a clip we created
	if err != nil {
		return fmt.Errorf("open clip: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) // #nosec G304 -- dst is the requested output
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
