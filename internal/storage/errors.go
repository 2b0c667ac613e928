package storage

import "errors"

// ErrInvalidDestination indicates an upload destination that is not an s3:// URL.
var ErrInvalidDestination = errors.New("invalid upload destination")

// ErrMissingBucket indicates S3 configuration without a bucket.
var ErrMissingBucket = errors.New("s3 bucket is required")
