package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/config"
)

// paramFlags binds the detection flags shared by remove and detect.
type paramFlags struct {
	job            string
	threshold      float64
	minSilence     time.Duration
	seekStep       time.Duration
	chunkWindow    time.Duration
	chunkThreshold time.Duration
	chunkOverlap   time.Duration
	parallel       int
}

func (f *paramFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	fs := cmd.Flags()
	fs.StringVarP(&f.job, "job", "j", "", "YAML or JSON job file (input_path, output_path, silence_threshold, min_silence_length)")
	fs.Float64VarP(&f.threshold, "threshold", "t", d.ThresholdDB, "Silence threshold in dBFS (positive values are read as legacy 0.5 = -50dB)")
	fs.DurationVarP(&f.minSilence, "min-silence", "m", d.MinSilence, "Shortest silence to remove")
	fs.DurationVar(&f.seekStep, "seek-step", d.SeekStep, "Analysis stride")
	fs.DurationVar(&f.chunkWindow, "chunk-window", d.ChunkWindow, "Analysis window for long recordings")
	fs.DurationVar(&f.chunkThreshold, "chunk-threshold", d.ChunkThreshold, "Recordings longer than this are analysed in chunks")
	fs.DurationVar(&f.chunkOverlap, "chunk-overlap", d.ChunkOverlap, "Extra audio read on each side of a chunk")
	fs.IntVarP(&f.parallel, "parallel", "p", d.Parallel, "Chunks analysed concurrently (1-64)")
}

// resolve layers defaults, environment, config file, job file and the
// flags set on the command line, in increasing order of precedence.
func (f *paramFlags) resolve(cmd *cobra.Command, env *Env) (config.Params, config.Job, error) {
	var job config.Job

	p, err := env.ConfigLoader.Load(cmd.Context())
	if err != nil {
		return p, job, err
	}

	if f.job != "" {
		if job, err = config.LoadJob(f.job); err != nil {
			return p, job, err
		}
		if err := job.Apply(&p); err != nil {
			return p, job, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("threshold") {
		p.ThresholdDB = f.threshold
	}
	if fs.Changed("min-silence") {
		p.MinSilence = f.minSilence
	}
	if fs.Changed("seek-step") {
		p.SeekStep = f.seekStep
	}
	if fs.Changed("chunk-window") {
		p.ChunkWindow = f.chunkWindow
	}
	if fs.Changed("chunk-threshold") {
		p.ChunkThreshold = f.chunkThreshold
	}
	if fs.Changed("chunk-overlap") {
		p.ChunkOverlap = f.chunkOverlap
	}
	if fs.Changed("parallel") {
		p.Parallel = f.parallel
	}

	p, err = p.Finalize()
	return p, job, err
}

// inputPath picks the positional argument, falling back to the job file.
func inputPath(args []string, job config.Job) (string, error) {
	switch {
	case len(args) > 0 && args[0] != "":
		return args[0], nil
	case job.InputPath != "":
		return job.InputPath, nil
	default:
		return "", fmt.Errorf("%w (pass it as an argument or set input_path in --job)", ErrNoInput)
	}
}

// checkInput verifies that path names a readable regular file.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}
