package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-silencecut/internal/interval"
	"github.com/alnah/go-silencecut/internal/pipeline"
)

// fakeReconstructor records the calls made through the Reconstructor contract.
type fakeReconstructor struct {
	mu         sync.Mutex
	extracted  []interval.Interval
	joined     [][]string
	written    map[string]string
	cleanups   int
	extractErr error
	concatErr  error
	cleanupErr error
}

func (f *fakeReconstructor) ExtractSubrange(_ context.Context, iv interval.Interval) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.extractErr != nil {
		return "", f.extractErr
	}
	f.extracted = append(f.extracted, iv)
	return fmt.Sprintf("clip-%d", len(f.extracted)), nil
}

func (f *fakeReconstructor) Concatenate(_ context.Context, clips []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.concatErr != nil {
		return "", f.concatErr
	}
	f.joined = append(f.joined, clips)
	return "joined", nil
}

func (f *fakeReconstructor) WriteOut(_ context.Context, clip, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.written == nil {
		f.written = map[string]string{}
	}
	f.written[dst] = clip
	return nil
}

func (f *fakeReconstructor) Cleanup() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return f.cleanupErr
}

func TestReconstruct(t *testing.T) {
	t.Parallel()

	rec := &fakeReconstructor{}
	keep := []interval.Interval{interval.Seconds(1.0, 3.0), interval.Seconds(4.2, 5.0)}

	err := pipeline.Reconstruct(context.Background(), rec, keep, "out.mp4")
	require.NoError(t, err)

	assert.Equal(t, keep, rec.extracted, "segments extracted in timeline order")
	assert.Equal(t, [][]string{{"clip-1", "clip-2"}}, rec.joined)
	assert.Equal(t, map[string]string{"out.mp4": "joined"}, rec.written)
	assert.Equal(t, 1, rec.cleanups)
}

func TestReconstruct_EmptyKeepWritesNothing(t *testing.T) {
	t.Parallel()

	rec := &fakeReconstructor{}
	err := pipeline.Reconstruct(context.Background(), rec, nil, "out.mp4")

	require.ErrorIs(t, err, pipeline.ErrEmptyResult)
	assert.Empty(t, rec.extracted)
	assert.Empty(t, rec.written)
	assert.Zero(t, rec.cleanups)
}

func TestReconstruct_CleansUpOnFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rec     *fakeReconstructor
		wantErr error
	}{
		{name: "extract fails", rec: &fakeReconstructor{extractErr: errBoom}, wantErr: errBoom},
		{name: "concat fails", rec: &fakeReconstructor{concatErr: errBoom}, wantErr: errBoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := pipeline.Reconstruct(context.Background(), tt.rec, []interval.Interval{interval.Seconds(0, 1)}, "out.mp4")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, tt.rec.cleanups)
			assert.Empty(t, tt.rec.written)
		})
	}
}

func TestReconstruct_ReportsCleanupFailure(t *testing.T) {
	t.Parallel()

	cleanupErr := errors.New("remove clip: permission denied")
	rec := &fakeReconstructor{concatErr: errBoom, cleanupErr: cleanupErr}

	err := pipeline.Reconstruct(context.Background(), rec, []interval.Interval{interval.Seconds(0, 1)}, "out.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, cleanupErr)
}

func TestReconstruct_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeReconstructor{}
	err := pipeline.Reconstruct(ctx, rec, []interval.Interval{interval.Seconds(0, 1)}, "out.mp4")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.extracted)
	assert.Equal(t, 1, rec.cleanups)
}

var errBoom = errors.New("boom")

// ---------------------------------------------------------------------------
// Run - analysis followed by reconstruction
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	src := newMemSource(sec(5), interval.Seconds(0, 1.0), interval.Seconds(3.0, 4.2))
	rec := &fakeReconstructor{}

	a, err := newOrchestrator(t, nil).Run(context.Background(), src, rec, "out.mp4")
	require.NoError(t, err)

	assert.Equal(t, a.Keep, rec.extracted)
	assert.Contains(t, rec.written, "out.mp4")
}

func TestRun_AllSilentIsEmptyResult(t *testing.T) {
	t.Parallel()

	src := newMemSource(sec(10), interval.Seconds(0, 10))
	rec := &fakeReconstructor{}

	a, err := newOrchestrator(t, nil).Run(context.Background(), src, rec, "out.mp4")
	require.ErrorIs(t, err, pipeline.ErrEmptyResult)
	require.NotNil(t, a, "analysis is still returned for reporting")
	assert.Equal(t, []interval.Interval{interval.Seconds(0, 10)}, a.Silences)
	assert.Empty(t, rec.written)
}

func TestRun_AllSilentShortTrackIsEmptyResult(t *testing.T) {
	t.Parallel()

	src := newMemSource(sec(10), interval.Seconds(0, 10))
	src.duration = sec(10.04)
	rec := &fakeReconstructor{}

	_, err := newOrchestrator(t, nil).Run(context.Background(), src, rec, "out.mp4")
	require.ErrorIs(t, err, pipeline.ErrEmptyResult)
	assert.Empty(t, rec.extracted)
	assert.Empty(t, rec.written)
}
