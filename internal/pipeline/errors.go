package pipeline

import "errors"

// ErrEmptyResult indicates the whole recording is silent, so there is nothing to write.
var ErrEmptyResult = errors.New("nothing left after removing silence")

// ErrInvalidConfig indicates orchestration parameters are out of range.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")
