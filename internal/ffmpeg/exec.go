// Package ffmpeg locates the ffmpeg binary and wraps the commands that probe,
// decode and cut recordings.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// Executor - testable FFmpeg execution with dependency injection
// ---------------------------------------------------------------------------

// runOutputFn is the function type for running a command and capturing output.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// Executor runs FFmpeg commands with injectable dependencies.
type Executor struct {
	runOutput runOutputFn
	logger    logrus.FieldLogger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput sets a custom runOutput function (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// WithExecutorLogger sets the logger used for command tracing.
func WithExecutorLogger(l logrus.FieldLogger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		runOutput: defaultRunOutput,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunOutput executes FFmpeg and captures its stderr output.
// FFmpeg writes diagnostic output (including probe info) to stderr and often
// exits non-zero for pure inspection runs, so output is returned with the error.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return e.runOutput(ctx, ffmpegPath, args)
}

// Run executes FFmpeg and returns an *Error carrying stderr if it fails.
// A canceled context is reported as the context error.
func (e *Executor) Run(ctx context.Context, ffmpegPath string, args []string) error {
	e.logger.WithField("args", args).Debug("running ffmpeg")

	output, err := e.runOutput(ctx, ffmpegPath, args)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("ffmpeg canceled: %w", ctx.Err())
	}
	return &Error{Args: args, Stderr: output, Err: err}
}

// defaultRunOutput is the production implementation.
// Returns stderr output even when the command fails.
func defaultRunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	// #nosec G204 -- ffmpegPath comes from Resolve, args are built internally
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stderr.String(), err
}
