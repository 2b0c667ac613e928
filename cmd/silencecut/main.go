package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/audio"
	"github.com/alnah/go-silencecut/internal/cli"
	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/ffmpeg"
	"github.com/alnah/go-silencecut/internal/interrupt"
	"github.com/alnah/go-silencecut/internal/pipeline"
	"github.com/alnah/go-silencecut/internal/storage"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitValidation  = 4
	ExitDecode      = 5
	ExitEmptyResult = 6
	ExitInterrupt   = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	logger := logrus.StandardLogger()
	env := cli.DefaultEnv()

	h, ctx := interrupt.NewHandler(context.Background(), logger)

	err := newRootCmd(env, logger).ExecuteContext(ctx)
	h.Stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code := exitCode(err)
		if h.WasInterrupted() {
			code = ExitInterrupt
		}
		os.Exit(code)
	}
}

// newRootCmd builds the command tree. logger is configured from
// --log-level or SILENCECUT_LOG_LEVEL before any subcommand runs.
func newRootCmd(env *cli.Env, logger *logrus.Logger) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "silencecut",
		Short: "Remove silent passages from audio and video recordings",
		Long: `silencecut finds passages quieter than a threshold and writes a copy
of the recording without them. Long recordings are analysed in
parallel chunks.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logLevel
			if !cmd.Flags().Changed("log-level") {
				rt, err := env.ConfigLoader.LoadRuntime(cmd.Context())
				if err != nil {
					return err
				}
				level = rt.LogLevel
			}
			return configureLogger(logger, level, env.Stderr)
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log verbosity: trace, debug, info, warn, error (env: SILENCECUT_LOG_LEVEL)")

	root.AddCommand(cli.RemoveCmd(env))
	root.AddCommand(cli.DetectCmd(env))
	root.AddCommand(cli.ConfigCmd(env))

	return root
}

// configureLogger sets level and a timestamped text format on w.
func configureLogger(logger *logrus.Logger, level string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level: %w", config.ErrInvalid, err)
	}
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return nil
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Cobra doesn't expose typed errors, so we check for known message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	if errors.Is(err, ffmpeg.ErrNotFound) {
		return ExitSetup
	}

	if errors.Is(err, config.ErrInvalid) || errors.Is(err, pipeline.ErrInvalidConfig) ||
		errors.Is(err, audio.ErrInvalidParams) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, cli.ErrNoInput) || errors.Is(err, cli.ErrSameFile) ||
		errors.Is(err, storage.ErrInvalidDestination) || errors.Is(err, storage.ErrMissingBucket) {
		return ExitValidation
	}

	if errors.Is(err, audio.ErrDecode) {
		return ExitDecode
	}

	if errors.Is(err, pipeline.ErrEmptyResult) {
		return ExitEmptyResult
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
