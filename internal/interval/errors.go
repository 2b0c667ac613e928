package interval

import "errors"

// ErrInvalid indicates a malformed interval or interval sequence
// (end <= start, negative bounds, unsorted or overlapping input).
// It signals a programming error in the caller, not a recoverable condition.
var ErrInvalid = errors.New("invalid interval")
