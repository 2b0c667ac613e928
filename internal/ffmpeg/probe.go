package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// "Duration: 00:05:23.45" from the input header.
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	// "time=00:05:23.45" from progress lines; the last one wins.
	progressRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// Probe returns the duration of a media file.
// It runs ffmpeg with an input and no output, which prints the container
// header and exits non-zero; the duration is read from that header, so
// ffprobe is not required.
func Probe(ctx context.Context, e *Executor, ffmpegPath, inputPath string) (time.Duration, error) {
	args := []string{
		"-hide_banner",
		"-i", inputPath,
	}
	output, err := e.RunOutput(ctx, ffmpegPath, args)
	if err != nil && output == "" {
		return 0, fmt.Errorf("%w: %s: %w", ErrProbe, inputPath, err)
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	d, perr := parseDuration(output)
	if perr != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrProbe, inputPath, perr)
	}
	return d, nil
}

// parseDuration extracts the media duration from FFmpeg stderr.
func parseDuration(output string) (time.Duration, error) {
	if m := durationRe.FindStringSubmatch(output); m != nil {
		return parseTimeComponents(m[1], m[2], m[3], m[4]), nil
	}

	if all := progressRe.FindAllStringSubmatch(output, -1); len(all) > 0 {
		m := all[len(all)-1]
		return parseTimeComponents(m[1], m[2], m[3], m[4]), nil
	}

	return 0, fmt.Errorf("no duration in ffmpeg output")
}

// parseTimeComponents converts HH:MM:SS.frac strings to a Duration.
// The fraction may have any number of digits; precision beyond nanoseconds is dropped.
func parseTimeComponents(hours, minutes, seconds, fractional string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	if len(fractional) > 9 {
		fractional = fractional[:9]
	}
	frac, _ := strconv.Atoi(fractional)
	for range 9 - len(fractional) {
		frac *= 10
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(frac)
}

// formatTime formats a duration for FFmpeg -ss/-to arguments.
// d is rounded to the millisecond before it is split, so the seconds field
// never reads 60.
func formatTime(d time.Duration) string {
	ms := d.Round(time.Millisecond).Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}
