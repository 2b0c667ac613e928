package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-silencecut/internal/config"
)

// Notes:
// - These tests redirect the config file with t.Setenv("XDG_CONFIG_HOME"),
//   so they cannot run in parallel.
// - Getenv is injected; the process environment is never read.

func configEnv(t *testing.T, getenv func(string) string) (*Env, *syncBuffer, *syncBuffer) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env, _ := testEnv(withTestStdout(stdout), withTestStderr(stderr), withTestGetenv(getenv))
	return env, stdout, stderr
}

// ---------------------------------------------------------------------------
// Tests for runConfigSet
// ---------------------------------------------------------------------------

func TestRunConfigSet_Values(t *testing.T) {
	env, _, stderr := configEnv(t, nil)

	if err := RunConfigSet(env, config.KeyThreshold, "-45"); err != nil {
		t.Fatalf("RunConfigSet(threshold) unexpected error: %v", err)
	}
	if err := RunConfigSet(env, config.KeyMinSilence, "750ms"); err != nil {
		t.Fatalf("RunConfigSet(min-silence) unexpected error: %v", err)
	}

	if got, _ := config.Get(config.KeyThreshold); got != "-45" {
		t.Errorf("saved threshold = %q, want %q", got, "-45")
	}
	if got, _ := config.Get(config.KeyMinSilence); got != "750ms" {
		t.Errorf("saved min-silence = %q, want %q", got, "750ms")
	}
	if !strings.Contains(stderr.String(), "Set threshold = -45") {
		t.Errorf("stderr = %q, want confirmation", stderr.String())
	}
}

func TestRunConfigSet_OutputDirIsCreated(t *testing.T) {
	env, _, _ := configEnv(t, nil)
	outDir := filepath.Join(t.TempDir(), "cut", "new")

	if err := RunConfigSet(env, config.KeyOutputDir, outDir); err != nil {
		t.Fatalf("RunConfigSet(output-dir) unexpected error: %v", err)
	}

	info, err := os.Stat(outDir)
	if err != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", err)
	}
	if got, _ := config.Get(config.KeyOutputDir); got != outDir {
		t.Errorf("saved output-dir = %q, want %q", got, outDir)
	}
}

func TestRunConfigSet_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "api-key", "x"},
		{"wrong separator", "min_silence", "1s"},
		{"unparsable duration", config.KeyMinSilence, "soon"},
		{"zero window", config.KeyChunkWindow, "0s"},
		{"too many workers", config.KeyParallel, "1000"},
		{"step above min silence", config.KeySeekStep, "2s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := configEnv(t, nil)

			err := RunConfigSet(env, tt.key, tt.value)
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("RunConfigSet(%q, %q) error = %v, want ErrInvalid", tt.key, tt.value, err)
			}
			data, _ := config.List()
			if len(data) != 0 {
				t.Errorf("rejected value was saved: %v", data)
			}
		})
	}
}

func TestRunConfigSet_OutputDirIsFile(t *testing.T) {
	env, _, _ := configEnv(t, nil)
	file := createInput(t, t.TempDir(), "file.txt")

	err := RunConfigSet(env, config.KeyOutputDir, file)
	if !errors.Is(err, config.ErrNotDirectory) {
		t.Errorf("RunConfigSet(output-dir=file) error = %v, want ErrNotDirectory", err)
	}
}

// ---------------------------------------------------------------------------
// Tests for runConfigGet
// ---------------------------------------------------------------------------

func TestRunConfigGet(t *testing.T) {
	t.Run("file value", func(t *testing.T) {
		env, stdout, _ := configEnv(t, nil)
		if err := config.Save(config.KeyParallel, "4"); err != nil {
			t.Fatal(err)
		}

		if err := RunConfigGet(env, config.KeyParallel); err != nil {
			t.Fatalf("RunConfigGet() unexpected error: %v", err)
		}
		if got := stdout.String(); got != "4\n" {
			t.Errorf("stdout = %q, want %q", got, "4\n")
		}
	})

	t.Run("falls back to environment", func(t *testing.T) {
		getenv := func(k string) string {
			if k == "SILENCECUT_THRESHOLD_DB" {
				return "-42"
			}
			return ""
		}
		env, stdout, _ := configEnv(t, getenv)

		if err := RunConfigGet(env, config.KeyThreshold); err != nil {
			t.Fatalf("RunConfigGet() unexpected error: %v", err)
		}
		if got := stdout.String(); got != "-42\n" {
			t.Errorf("stdout = %q, want %q", got, "-42\n")
		}
	})

	t.Run("unset prints nothing", func(t *testing.T) {
		env, stdout, _ := configEnv(t, nil)

		if err := RunConfigGet(env, config.KeyOutputDir); err != nil {
			t.Fatalf("RunConfigGet() unexpected error: %v", err)
		}
		if got := stdout.String(); got != "" {
			t.Errorf("stdout = %q, want empty", got)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		env, _, _ := configEnv(t, nil)

		err := RunConfigGet(env, "nope")
		if !errors.Is(err, config.ErrInvalid) {
			t.Errorf("RunConfigGet(nope) error = %v, want ErrInvalid", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Tests for runConfigList
// ---------------------------------------------------------------------------

func TestRunConfigList(t *testing.T) {
	t.Run("file and environment", func(t *testing.T) {
		getenv := func(k string) string {
			switch k {
			case "SILENCECUT_PARALLEL":
				return "8"
			case "SILENCECUT_THRESHOLD_DB":
				return "-60"
			}
			return ""
		}
		env, stdout, _ := configEnv(t, getenv)
		if err := config.Save(config.KeyThreshold, "-45"); err != nil {
			t.Fatal(err)
		}

		if err := RunConfigList(env); err != nil {
			t.Fatalf("RunConfigList() unexpected error: %v", err)
		}

		want := "threshold=-45\nparallel=8 (from env)\n"
		if got := stdout.String(); got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		env, stdout, _ := configEnv(t, nil)

		if err := RunConfigList(env); err != nil {
			t.Fatalf("RunConfigList() unexpected error: %v", err)
		}

		out := stdout.String()
		if !strings.HasPrefix(out, "No configuration set.\n") {
			t.Errorf("stdout = %q, want no-configuration message", out)
		}
		for _, key := range config.Keys {
			if !strings.Contains(out, "  "+key+"\n") {
				t.Errorf("stdout missing available key %q", key)
			}
		}
	})
}

func TestConfigCmd_Subcommands(t *testing.T) {
	t.Parallel()

	env, _ := testEnv()
	cmd := ConfigCmd(env)

	for _, name := range []string{"set", "get", "list"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("config %s not registered", name)
		}
	}
}
