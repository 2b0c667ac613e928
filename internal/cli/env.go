package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/ffmpeg"
	"github.com/alnah/go-silencecut/internal/pipeline"
	"github.com/alnah/go-silencecut/internal/storage"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Logger logrus.FieldLogger

	// Factories for domain objects
	FFmpegResolver  FFmpegResolver
	ConfigLoader    ConfigLoader
	MediaFactory    MediaFactory
	UploaderFactory UploaderFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader resolves the layered parameters below the command line.
type ConfigLoader interface {
	Load(ctx context.Context) (config.Params, error)
	LoadRuntime(ctx context.Context) (config.Runtime, error)
}

// MediaFactory builds the audio source and the reconstructor for one input file.
type MediaFactory interface {
	NewSource(ffmpegPath, inputPath string, logger logrus.FieldLogger) pipeline.Source
	NewReconstructor(ffmpegPath, inputPath string, logger logrus.FieldLogger) pipeline.Reconstructor
}

// Uploader copies a finished output to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath string, dst storage.Destination) (string, error)
}

// UploaderFactory creates uploaders from runtime settings.
type UploaderFactory interface {
	NewUploader(ctx context.Context, cfg storage.S3Config, logger logrus.FieldLogger) (Uploader, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithLogger sets the logger handed to the pipeline and media layers.
func WithLogger(l logrus.FieldLogger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) {
		e.FFmpegResolver = r
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithMediaFactory sets the media factory.
func WithMediaFactory(f MediaFactory) EnvOption {
	return func(e *Env) {
		e.MediaFactory = f
	}
}

// WithUploaderFactory sets the uploader factory.
func WithUploaderFactory(f UploaderFactory) EnvOption {
	return func(e *Env) {
		e.UploaderFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		Now:             time.Now,
		Logger:          logrus.StandardLogger(),
		FFmpegResolver:  &defaultFFmpegResolver{},
		ConfigLoader:    &defaultConfigLoader{},
		MediaFactory:    &defaultMediaFactory{},
		UploaderFactory: &defaultUploaderFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(ctx context.Context) (config.Params, error) {
	return config.Load(ctx)
}

func (defaultConfigLoader) LoadRuntime(ctx context.Context) (config.Runtime, error) {
	return config.LoadRuntime(ctx, nil)
}

// defaultMediaFactory implements MediaFactory with ffmpeg subprocesses.
type defaultMediaFactory struct{}

func (defaultMediaFactory) NewSource(ffmpegPath, inputPath string, logger logrus.FieldLogger) pipeline.Source {
	return ffmpeg.NewSource(ffmpegPath, inputPath,
		ffmpeg.WithSourceExecutor(ffmpeg.NewExecutor(ffmpeg.WithExecutorLogger(logger))),
		ffmpeg.WithSourceLogger(logger))
}

func (defaultMediaFactory) NewReconstructor(ffmpegPath, inputPath string, logger logrus.FieldLogger) pipeline.Reconstructor {
	return ffmpeg.NewReconstructor(ffmpegPath, inputPath,
		ffmpeg.WithReconstructorExecutor(ffmpeg.NewExecutor(ffmpeg.WithExecutorLogger(logger))),
		ffmpeg.WithReconstructorLogger(logger))
}

// defaultUploaderFactory implements UploaderFactory with the AWS SDK.
type defaultUploaderFactory struct{}

func (defaultUploaderFactory) NewUploader(ctx context.Context, cfg storage.S3Config, logger logrus.FieldLogger) (Uploader, error) {
	u, err := storage.NewS3Uploader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver  = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ MediaFactory    = (*defaultMediaFactory)(nil)
	_ UploaderFactory = (*defaultUploaderFactory)(nil)
	_ Uploader        = (*storage.S3Uploader)(nil)
)
