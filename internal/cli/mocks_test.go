package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-silencecut/internal/audio"
	"github.com/alnah/go-silencecut/internal/config"
	"github.com/alnah/go-silencecut/internal/interval"
	"github.com/alnah/go-silencecut/internal/pipeline"
	"github.com/alnah/go-silencecut/internal/storage"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc    func() (config.Params, error)
	RuntimeFunc func() (config.Runtime, error)

	mu           sync.Mutex
	loadCalls    int
	runtimeCalls int
}

func (m *mockConfigLoader) Load(context.Context) (config.Params, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Defaults(), nil
}

func (m *mockConfigLoader) LoadRuntime(context.Context) (config.Runtime, error) {
	m.mu.Lock()
	m.runtimeCalls++
	m.mu.Unlock()

	if m.RuntimeFunc != nil {
		return m.RuntimeFunc()
	}
	return config.Runtime{LogLevel: "info", S3Region: "us-east-1"}, nil
}

func (m *mockConfigLoader) RuntimeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runtimeCalls
}

// ---------------------------------------------------------------------------
// Mock MediaFactory + Source + Reconstructor
// ---------------------------------------------------------------------------

// mockSource serves a 1 kHz square wave that is silent on the given ranges.
type mockSource struct {
	track       *audio.Track
	DurationErr error
}

const mockRate = 1000

func newMockSource(total time.Duration, silent ...interval.Interval) *mockSource {
	n := int(total / time.Millisecond)
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.5
		if i%2 == 1 {
			samples[i] = -0.5
		}
	}
	for _, s := range silent {
		for i := int(s.Start / time.Millisecond); i < int(s.End/time.Millisecond) && i < n; i++ {
			samples[i] = 0
		}
	}
	return &mockSource{track: &audio.Track{Samples: samples, SampleRate: mockRate}}
}

func (m *mockSource) Duration(context.Context) (time.Duration, error) {
	if m.DurationErr != nil {
		return 0, m.DurationErr
	}
	return m.track.Duration(), nil
}

func (m *mockSource) LoadTrack(_ context.Context, start, end time.Duration) (*audio.Track, error) {
	return m.track.Slice(start, end), nil
}

// mockReconstructor writes the output as a small text file naming the kept ranges.
type mockReconstructor struct {
	mu        sync.Mutex
	extracted []interval.Interval
	written   []string
	cleanups  int
}

func (m *mockReconstructor) ExtractSubrange(_ context.Context, iv interval.Interval) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extracted = append(m.extracted, iv)
	return iv.String(), nil
}

func (m *mockReconstructor) Concatenate(_ context.Context, clips []string) (string, error) {
	return fmt.Sprint(clips), nil
}

func (m *mockReconstructor) WriteOut(_ context.Context, clip, dst string) error {
	m.mu.Lock()
	m.written = append(m.written, dst)
	m.mu.Unlock()
	return os.WriteFile(dst, []byte(clip), 0o600)
}

func (m *mockReconstructor) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups++
	return nil
}

func (m *mockReconstructor) Extracted() []interval.Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]interval.Interval(nil), m.extracted...)
}

func (m *mockReconstructor) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

type mockMediaFactory struct {
	Source *mockSource
	Rec    *mockReconstructor

	mu     sync.Mutex
	inputs []string
}

func newMockMediaFactory(src *mockSource) *mockMediaFactory {
	return &mockMediaFactory{Source: src, Rec: &mockReconstructor{}}
}

func (m *mockMediaFactory) NewSource(_, inputPath string, _ logrus.FieldLogger) pipeline.Source {
	m.mu.Lock()
	m.inputs = append(m.inputs, inputPath)
	m.mu.Unlock()
	return m.Source
}

func (m *mockMediaFactory) NewReconstructor(_, _ string, _ logrus.FieldLogger) pipeline.Reconstructor {
	return m.Rec
}

func (m *mockMediaFactory) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inputs...)
}

// ---------------------------------------------------------------------------
// Mock UploaderFactory + Uploader
// ---------------------------------------------------------------------------

type uploadCall struct {
	LocalPath string
	Dest      storage.Destination
}

type mockUploader struct {
	UploadErr error

	mu    sync.Mutex
	calls []uploadCall
}

func (m *mockUploader) Upload(_ context.Context, localPath string, dst storage.Destination) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, uploadCall{LocalPath: localPath, Dest: dst})
	m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	return "https://" + dst.Bucket + ".s3.us-east-1.amazonaws.com/" + dst.ObjectKey(localPath), nil
}

func (m *mockUploader) Calls() []uploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uploadCall(nil), m.calls...)
}

type mockUploaderFactory struct {
	Uploader *mockUploader
	NewErr   error

	mu      sync.Mutex
	configs []storage.S3Config
}

func (m *mockUploaderFactory) NewUploader(_ context.Context, cfg storage.S3Config, _ logrus.FieldLogger) (Uploader, error) {
	m.mu.Lock()
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()
	if m.NewErr != nil {
		return nil, m.NewErr
	}
	return m.Uploader, nil
}

func (m *mockUploaderFactory) Configs() []storage.S3Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.S3Config(nil), m.configs...)
}

var errMock = errors.New("mock failure")
