package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/alnah/go-silencecut/internal/interval"
)

// Reconstructor turns kept ranges of a recording into an output file.
// Clips are opaque handles owned by the implementation until Cleanup.
type Reconstructor interface {
	ExtractSubrange(ctx context.Context, iv interval.Interval) (string, error)
	Concatenate(ctx context.Context, clips []string) (string, error)
	WriteOut(ctx context.Context, clip, dst string) error
	Cleanup() error
}

// Reconstruct extracts every kept range in order, joins them and writes the
// result to dst. Temporary clips are released on every path.
// An empty keep list returns ErrEmptyResult without touching rec.
func Reconstruct(ctx context.Context, rec Reconstructor, keep []interval.Interval, dst string) (err error) {
	if len(keep) == 0 {
		return ErrEmptyResult
	}

	defer func() {
		if cerr := rec.Cleanup(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("cleanup: %w", cerr)).ErrorOrNil()
		}
	}()

	clips := make([]string, 0, len(keep))
	for i, iv := range keep {
		if err := ctx.Err(); err != nil {
			return err
		}
		clip, err := rec.ExtractSubrange(ctx, iv)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		clips = append(clips, clip)
	}

	joined, err := rec.Concatenate(ctx, clips)
	if err != nil {
		return err
	}
	return rec.WriteOut(ctx, joined, dst)
}
