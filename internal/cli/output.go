package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/format"
	"github.com/alnah/go-silencecut/internal/pipeline"
)

// defaultOutputName returns "<name>_<YYYYmmdd_HHMMSS><ext>" for input.
// Inputs without an extension get ".mp4", matching the reconstructor.
func defaultOutputName(input string, now time.Time) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("%s_%s%s", name, now.Format("20060102_150405"), ext)
}

// resolveOutput computes where the result of input goes.
// An explicit --output-dir wins over the configured one; without either,
// a default-named output lands next to the input.
func resolveOutput(input, output, outputDir, configuredDir string, now time.Time) (string, error) {
	dir := outputDir
	if dir == "" {
		dir = configuredDir
	}
	if output == "" && dir == "" {
		dir = filepath.Dir(input)
	}
	if dir != "" {
		dir = config.ExpandPath(dir)
		if err := config.EnsureOutputDir(dir); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
	}

	out := config.ResolveOutputPath(config.ExpandPath(output), dir, defaultOutputName(input, now))

	if sameFile(out, input) {
		return "", fmt.Errorf("%w: %s", ErrSameFile, out)
	}
	if _, err := os.Stat(out); err == nil {
		return "", fmt.Errorf("%w: %s", ErrOutputExists, out)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("cannot access output path: %w", err)
	}
	return out, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// writeReport summarizes an analysis for humans.
func writeReport(w io.Writer, a *pipeline.Analysis, elapsed time.Duration) {
	removed := a.Removed()
	_, _ = fmt.Fprintf(w, "Found %d silent passages: %s of %s removed (%s)\n",
		len(a.Silences), format.Duration(removed), format.Duration(a.Duration), format.Percent(removed, a.Duration))
	_, _ = fmt.Fprintf(w, "Keeping %d segments: %s\n", len(a.Keep), format.Duration(a.Kept()))
	if a.Chunks > 0 {
		_, _ = fmt.Fprintf(w, "Analysed in %d chunks\n", a.Chunks)
	}
	_, _ = fmt.Fprintf(w, "Elapsed: %s\n", format.Duration(elapsed))
}

// fileSize returns the size of path, or -1 if it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}
