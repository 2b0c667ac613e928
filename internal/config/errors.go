package config

import "errors"

// ErrInvalid is returned for malformed or out-of-range configuration,
// whatever layer it came from.
var ErrInvalid = errors.New("invalid configuration")

// Output directory and config file errors.
var (
	ErrInvalidSyntax = errors.New("invalid config syntax")
	ErrNotDirectory  = errors.New("path is not a directory")
	ErrNotWritable   = errors.New("directory is not writable")
)
