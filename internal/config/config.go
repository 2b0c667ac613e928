package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config keys.
const (
	KeyThreshold      = "threshold"
	KeyMinSilence     = "min-silence"
	KeySeekStep       = "seek-step"
	KeyChunkWindow    = "chunk-window"
	KeyChunkThreshold = "chunk-threshold"
	KeyChunkOverlap   = "chunk-overlap"
	KeyParallel       = "parallel"
	KeyOutputDir      = "output-dir"
)

// Keys lists every key accepted by Save, in display order.
var Keys = []string{
	KeyThreshold,
	KeyMinSilence,
	KeySeekStep,
	KeyChunkWindow,
	KeyChunkThreshold,
	KeyChunkOverlap,
	KeyParallel,
	KeyOutputDir,
}

// IsKey reports whether key is a known config key.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-silencecut.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-silencecut"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-silencecut"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load resolves parameters from defaults, SILENCECUT_* environment
// variables and the config file, in increasing order of precedence.
// A missing config file is not an error.
func Load(ctx context.Context) (Params, error) {
	return LoadWith(ctx, nil)
}

// LoadWith is Load with an explicit environment lookuper (nil for the process environment).
func LoadWith(ctx context.Context, lookup Lookuper) (Params, error) {
	p := Defaults()
	if err := applyEnv(ctx, &p, lookup); err != nil {
		return p, err
	}

	file, err := path()
	if err != nil {
		return p, err
	}
	data, err := parseFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read config: %w", err)
	}
	if err := p.applyKeys(data); err != nil {
		return p, fmt.Errorf("%s: %w", file, err)
	}
	return p, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %w at line %d: %q", ErrInvalid, ErrInvalidSyntax, lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file after checking that
// the value parses for that key. Existing pairs are kept, comments are not.
func Save(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("%w: unknown key %q (valid: %s)", ErrInvalid, key, strings.Join(Keys, ", "))
	}
	probe := Defaults()
	if err := probe.applyKeys(map[string]string{key: value}); err != nil {
		return err
	}

	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFileAtomic(p, existing)
}

// writeFileAtomic writes the config map to a sibling temp file and renames
// it over p, so readers never see a half-written file.
func writeFileAtomic(p string, data map[string]string) error {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, data[k])
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".config-*")
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil { // #nosec G302 -- plain user config
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d can receive output files, creating it if needed.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: output-dir cannot be empty", ErrInvalid)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %w: %s", ErrInvalid, ErrNotDirectory, d)
	}

	testFile := filepath.Join(d, ".go-silencecut-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(testFile)
		return fmt.Errorf("%w: %w", ErrNotWritable, err)
	}
	_ = os.Remove(testFile)

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}
