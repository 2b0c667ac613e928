package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates the FFmpeg binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrProbe indicates the media duration could not be read from FFmpeg output.
var ErrProbe = errors.New("could not determine media duration")

// ErrNoClips is returned when concatenation is requested with nothing to join.
var ErrNoClips = errors.New("no clips to concatenate")

// maxStderrTail bounds how much FFmpeg output is kept in an Error.
const maxStderrTail = 2048

// Error describes a failed FFmpeg invocation.
// It keeps the arguments and the tail of stderr, where FFmpeg reports the cause.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	stderr := e.Stderr
	if len(stderr) > maxStderrTail {
		stderr = "..." + stderr[len(stderr)-maxStderrTail:]
	}
	return fmt.Sprintf("ffmpeg %s: %v\nstderr: %s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(stderr))
}

func (e *Error) Unwrap() error {
	return e.Err
}
