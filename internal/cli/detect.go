package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/format"
	"github.com/alnah/go-silencecut/internal/interval"
	"github.com/alnah/go-silencecut/internal/pipeline"
)

// DetectCmd creates the detect command.
// The env parameter provides injectable dependencies for testing.
func DetectCmd(env *Env) *cobra.Command {
	var (
		flags   paramFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "detect [input]",
		Short: "List silent passages without writing any media",
		Long: `Analyse a recording and print its silent passages and the segments
that remove would keep. Times are in seconds.`,
		Example: `  silencecut detect lecture.mp4
  silencecut detect lecture.mp4 --json | jq '.silences | length'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, env, args, &flags, jsonOut)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the analysis as JSON")

	return cmd
}

func runDetect(cmd *cobra.Command, env *Env, args []string, flags *paramFlags, jsonOut bool) error {
	ctx := cmd.Context()

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

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)

	orch, err := pipeline.New(params.Pipeline(), pipeline.WithLogger(env.Logger))
	if err != nil {
		return err
	}

	analysis, err := orch.Analyze(ctx, env.MediaFactory.NewSource(ffmpegPath, input, env.Logger))
	if err != nil {
		return err
	}

	if jsonOut {
		return writeAnalysisJSON(env.Stdout, input, analysis)
	}
	writeAnalysisText(env.Stdout, analysis)
	return nil
}

// analysisJSON is the --json document; times are seconds.
type analysisJSON struct {
	Input    string       `json:"input"`
	Duration float64      `json:"duration"`
	Removed  float64      `json:"removed"`
	Chunks   int          `json:"chunks"`
	Silences [][2]float64 `json:"silences"`
	Keep     [][2]float64 `json:"keep"`
}

func toPairs(ivs []interval.Interval) [][2]float64 {
	out := make([][2]float64, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, [2]float64{iv.Start.Seconds(), iv.End.Seconds()})
	}
	return out
}

func writeAnalysisJSON(w io.Writer, input string, a *pipeline.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(analysisJSON{
		Input:    input,
		Duration: a.Duration.Seconds(),
		Removed:  a.Removed().Seconds(),
		Chunks:   a.Chunks,
		Silences: toPairs(a.Silences),
		Keep:     toPairs(a.Keep),
	})
}

func writeAnalysisText(w io.Writer, a *pipeline.Analysis) {
	_, _ = fmt.Fprintf(w, "duration %s\n", format.Seconds(a.Duration))
	for _, iv := range a.Silences {
		_, _ = fmt.Fprintf(w, "silence  %s  %s  (%s)\n", format.Seconds(iv.Start), format.Seconds(iv.End), format.Seconds(iv.Duration()))
	}
	for _, iv := range a.Keep {
		_, _ = fmt.Fprintf(w, "keep     %s  %s  (%s)\n", format.Seconds(iv.Start), format.Seconds(iv.End), format.Seconds(iv.Duration()))
	}
	_, _ = fmt.Fprintf(w, "removed  %s of %s (%s)\n", format.Seconds(a.Removed()), format.Seconds(a.Duration), format.Percent(a.Removed(), a.Duration))
}
