package ffmpeg

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
)

const (
	// envFFmpegPath names the environment variable for a custom ffmpeg binary.
	envFFmpegPath = "FFMPEG_PATH"

	// minFFmpegVersion is the minimum supported ffmpeg version.
	// Older builds lack input-side -to and the concat demuxer options used here.
	minFFmpegVersion = "4.0"
)

var minVersion = version.Must(version.NewVersion(minFFmpegVersion))

// ---------------------------------------------------------------------------
// Resolver - testable FFmpeg resolution with dependency injection
// ---------------------------------------------------------------------------

// Resolver locates the FFmpeg binary.
type Resolver struct {
	stat fileStatter
	env  envProvider
	goos string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileStatter sets the file statter implementation.
func WithFileStatter(s fileStatter) ResolverOption {
	return func(r *Resolver) { r.stat = s }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithPlatform sets the target OS used for install instructions.
func WithPlatform(goos string) ResolverOption {
	return func(r *Resolver) { r.goos = goos }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		stat: osFileStatter{},
		env:  osEnvProvider{},
		goos: runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. FFMPEG_PATH environment variable (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve(_ context.Context) (string, error) {
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stat.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	if path, err := r.env.LookPath("ffmpeg"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or set FFMPEG_PATH environment variable to your ffmpeg.exe.`
	default:
		return `To install FFmpeg, download from https://ffmpeg.org/download.html
Or set FFMPEG_PATH environment variable to your ffmpeg binary.`
	}
}

// Resolve finds ffmpeg using a default resolver.
func Resolve(ctx context.Context) (string, error) {
	return NewResolver().Resolve(ctx)
}

// ---------------------------------------------------------------------------
// VersionChecker - warns about outdated FFmpeg builds
// ---------------------------------------------------------------------------

// VersionChecker verifies FFmpeg version requirements.
type VersionChecker struct {
	executor *Executor
	logger   logrus.FieldLogger
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor for running FFmpeg.
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionLogger sets the logger for warnings.
func WithVersionLogger(l logrus.FieldLogger) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.logger = l }
}

// NewVersionChecker creates a VersionChecker with the given options.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check verifies that ffmpeg meets minimum version requirements.
// Logs a warning if the version is below minimum but doesn't fail.
// Returns true if version was successfully checked, false if parsing failed
// (git snapshots report a commit instead of a release number).
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) bool {
	output, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return false
	}

	v, ok := parseVersion(output)
	if !ok {
		vc.logger.Debug("could not parse ffmpeg version")
		return false
	}

	if v.Core().LessThan(minVersion) {
		vc.logger.WithFields(logrus.Fields{
			"detected":    v.String(),
			"recommended": minFFmpegVersion,
		}).Warn("ffmpeg version is older than recommended")
	}
	return true
}

// parseVersion reads the release from "ffmpeg version 6.1.1 Copyright...",
// "ffmpeg version n6.1.1" or distro builds like "4.4.2-0ubuntu0.22.04.1".
func parseVersion(output string) (*version.Version, bool) {
	first, _, _ := strings.Cut(output, "\n")
	fields := strings.Fields(first)
	if len(fields) < 3 || fields[0] != "ffmpeg" || fields[1] != "version" {
		return nil, false
	}
	v, err := version.NewVersion(strings.TrimPrefix(fields[2], "n"))
	if err != nil {
		return nil, false
	}
	return v, true
}
