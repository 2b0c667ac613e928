package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"

	"github.com/alnah/go-silencecut/internal/interval"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	media          *mockMediaFactory
	uploader       *mockUploaderFactory
	logHook        *logtest.Hook
}

// fiveSecondSource is the reference recording: loud 1-3s and 4.2-5s.
func fiveSecondSource() *mockSource {
	return newMockSource(5*time.Second, interval.Seconds(0, 1.0), interval.Seconds(3.0, 4.2))
}

func newTestMocks() *testMocks {
	return &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		media:          newMockMediaFactory(fiveSecondSource()),
		uploader:       &mockUploaderFactory{Uploader: &mockUploader{}},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

type testEnvOptions struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	now    func() time.Time
	mocks  *testMocks
}

type testEnvOption func(*testEnvOptions)

func withTestStdout(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stdout = w }
}

func withTestStderr(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stderr = w }
}

func withTestGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

func withTestMocks(m *testMocks) testEnvOption {
	return func(o *testEnvOptions) { o.mocks = m }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		getenv: func(string) string { return "" },
		now: func() time.Time {
			return time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)
		},
		mocks: newTestMocks(),
	}

	for _, opt := range opts {
		opt(options)
	}

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	options.mocks.logHook = hook

	env := &Env{
		Stdout:          options.stdout,
		Stderr:          options.stderr,
		Getenv:          options.getenv,
		Now:             options.now,
		Logger:          logger,
		FFmpegResolver:  options.mocks.ffmpegResolver,
		ConfigLoader:    options.mocks.configLoader,
		MediaFactory:    options.mocks.media,
		UploaderFactory: options.mocks.uploader,
	}

	return env, options.mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// executeCmd runs cmd with args as if it were the root command.
func executeCmd(cmd *cobra.Command, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

// createInput writes a placeholder media file and returns its path.
func createInput(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("media"), 0o600); err != nil {
		t.Fatalf("failed to create input: %v", err)
	}
	return p
}
