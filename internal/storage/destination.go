package storage

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Destination is a parsed s3://bucket/key location.
// A Key that is empty or ends with "/" is a prefix: the uploaded file's base
// name is appended to it.
type Destination struct {
	Bucket string
	Key    string
}

// ParseDestination parses an s3:// URL.
func ParseDestination(raw string) (Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("%w: %q: %v", ErrInvalidDestination, raw, err)
	}
	if u.Scheme != "s3" {
		return Destination{}, fmt.Errorf("%w: %q must use the s3:// scheme", ErrInvalidDestination, raw)
	}
	if u.Host == "" {
		return Destination{}, fmt.Errorf("%w: %q has no bucket", ErrInvalidDestination, raw)
	}
	return Destination{
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// ObjectKey returns the key under which localPath is stored.
func (d Destination) ObjectKey(localPath string) string {
	if d.Key == "" || strings.HasSuffix(d.Key, "/") {
		return path.Join(d.Key, filepath.Base(localPath))
	}
	return d.Key
}

// String returns the destination as an s3:// URL.
func (d Destination) String() string {
	return "s3://" + d.Bucket + "/" + d.Key
}
