package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/format"
	"github.com/alnah/go-silencecut/internal/pipeline"
	"github.com/alnah/go-silencecut/internal/storage"
)

// removeOptions holds the output flags of the remove command.
type removeOptions struct {
	output    string
	outputDir string
	upload    string
}

// RemoveCmd creates the remove command.
// The env parameter provides injectable dependencies for testing.
func RemoveCmd(env *Env) *cobra.Command {
	var (
		flags paramFlags
		opts  removeOptions
	)

	cmd := &cobra.Command{
		Use:     "remove [input]",
		Aliases: []string{"cut"},
		Short:   "Remove silent passages from a video or audio file",
		Long: `Remove silent passages from a video or audio file.

The audio track is analysed at 16 kHz mono. Every passage at or below the
threshold for at least --min-silence is cut; the remaining segments are
re-encoded (H.264/AAC for video) and joined into a new file.

Recordings longer than --chunk-threshold are analysed in --chunk-window
pieces, --parallel at a time. Silences crossing a chunk boundary are fused.

Parameters are layered: flags > --job file > config file > SILENCECUT_*
environment > defaults.`,
		Example: `  silencecut remove lecture.mp4
  silencecut remove lecture.mp4 -t -45 -m 750ms -o lecture-cut.mp4
  silencecut remove --job config.json
  silencecut remove talk.mp4 -p 4 --upload s3://media/cut/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, env, args, &flags, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: <name>_<timestamp><ext>)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for the output file (default: config, else next to the input)")
	cmd.Flags().StringVar(&opts.upload, "upload", "", "Also upload the result to s3://bucket/prefix")

	return cmd
}

// runRemove executes detection and reconstruction for one input.
// Validation order: params -> input -> upload target -> output -> ffmpeg.
func runRemove(cmd *cobra.Command, env *Env, args []string, flags *paramFlags, opts removeOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	params, job, err := flags.resolve(cmd, env)
	if err != nil {
		return err
	}

	input, err := inputPath(args, job)
	if err != nil {
		return err
	}
	input = config.ExpandPath(input)
	if err := checkInput(input); err != nil {
		return err
	}

	var (
		dest storage.Destination
		rt   config.Runtime
	)
	if opts.upload != "" {
		if dest, err = storage.ParseDestination(opts.upload); err != nil {
			return err
		}
		if rt, err = env.ConfigLoader.LoadRuntime(ctx); err != nil {
			return err
		}
	}

	output, err := resolveOutput(input, opts.output, opts.outputDir, params.OutputDir, env.Now())
	if err != nil {
		return err
	}

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	orch, err := pipeline.New(params.Pipeline(), pipeline.WithLogger(env.Logger))
	if err != nil {
		return err
	}
	src := env.MediaFactory.NewSource(ffmpegPath, input, env.Logger)
	rec := env.MediaFactory.NewReconstructor(ffmpegPath, input, env.Logger)

	// === DETECT + RECONSTRUCT ===

	_, _ = fmt.Fprintf(env.Stderr, "Detecting silences in %s...\n", input)
	start := env.Now()
	analysis, err := orch.Run(ctx, src, rec, output)
	if analysis != nil {
		writeReport(env.Stderr, analysis, env.Now().Sub(start))
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyResult) {
			return fmt.Errorf("%w (try a lower --threshold), no output written", err)
		}
		return err
	}

	if size := fileSize(output); size >= 0 {
		_, _ = fmt.Fprintf(env.Stderr, "Done: %s (%s)\n", output, format.Size(size))
	} else {
		_, _ = fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	}

	// === UPLOAD (optional) ===

	if opts.upload == "" {
		return nil
	}
	uploader, err := env.UploaderFactory.NewUploader(ctx, storage.S3Config{
		Bucket:          dest.Bucket,
		Region:          rt.S3Region,
		Endpoint:        rt.S3Endpoint,
		AccessKeyID:     rt.S3AccessKeyID,
		SecretAccessKey: rt.S3SecretAccessKey,
	}, env.Logger)
	if err != nil {
		return err
	}
	url, err := uploader.Upload(ctx, output, dest)
	if err != nil {
		return fmt.Errorf("output kept at %s: %w", output, err)
	}
	_, _ = fmt.Fprintf(env.Stderr, "Uploaded: %s\n", url)
	return nil
}
