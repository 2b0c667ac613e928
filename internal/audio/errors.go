package audio

import "errors"

// ErrDecode indicates the audio track could not be read or is corrupt.
var ErrDecode = errors.New("audio decode failed")

// ErrInvalidParams indicates detector or chunking parameters are out of range.
var ErrInvalidParams = errors.New("invalid audio parameters")
