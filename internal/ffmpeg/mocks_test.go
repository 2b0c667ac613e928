package ffmpeg

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

type mockFileStatter struct {
	stat func(name string) (os.FileInfo, error)
}

func (m *mockFileStatter) Stat(name string) (os.FileInfo, error) {
	if m.stat != nil {
		return m.stat(name)
	}
	return nil, os.ErrNotExist
}

type mockEnvProvider struct {
	getenv   func(key string) string
	lookPath func(file string) (string, error)
}

func (m *mockEnvProvider) Getenv(key string) string {
	if m.getenv != nil {
		return m.getenv(key)
	}
	return ""
}

func (m *mockEnvProvider) LookPath(file string) (string, error) {
	if m.lookPath != nil {
		return m.lookPath(file)
	}
	return "", errors.New("not found")
}

// recordingRunner captures every FFmpeg invocation and delegates to fn.
// The last argument of an invocation is the output path by convention.
type recordingRunner struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(args []string) (string, error)
}

func (r *recordingRunner) run(_ context.Context, _ string, args []string) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string(nil), args...))
	r.mu.Unlock()
	if r.fn == nil {
		return "", nil
	}
	return r.fn(args)
}

func (r *recordingRunner) executor() *Executor {
	return NewExecutor(WithRunOutput(r.run))
}

func (r *recordingRunner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// lastArg returns the output path of an FFmpeg argument list.
func lastArg(args []string) string {
	return args[len(args)-1]
}

// argAfter returns the value following flag, or "" if absent.
func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// writeMonoWAV writes a 16-bit mono WAV of n samples at the given value.
func writeMonoWAV(t *testing.T, path string, rate, n, value int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	data := make([]int, n)
	for i := range data {
		data[i] = value
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}
