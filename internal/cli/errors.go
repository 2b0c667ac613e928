package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrNoInput indicates neither an argument nor a job file named the input.
	ErrNoInput = errors.New("no input file given")

	// ErrSameFile indicates the output path would overwrite the input.
	ErrSameFile = errors.New("output path is the input file")
)
