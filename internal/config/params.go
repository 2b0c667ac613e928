package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-silencecut/internal/pipeline"
)

// Params are the user-tunable settings of a silence removal run.
type Params struct {
	ThresholdDB    float64       `key:"threshold" env:"THRESHOLD_DB, overwrite" validate:"lte=0"`
	MinSilence     time.Duration `key:"min-silence" env:"MIN_SILENCE, overwrite" validate:"gt=0"`
	SeekStep       time.Duration `key:"seek-step" env:"SEEK_STEP, overwrite" validate:"gt=0,ltefield=MinSilence"`
	ChunkWindow    time.Duration `key:"chunk-window" env:"CHUNK_WINDOW, overwrite" validate:"gt=0"`
	ChunkThreshold time.Duration `key:"chunk-threshold" env:"CHUNK_THRESHOLD, overwrite" validate:"gte=0"`
	ChunkOverlap   time.Duration `key:"chunk-overlap" env:"CHUNK_OVERLAP, overwrite" validate:"gte=0,ltfield=ChunkWindow"`
	Parallel       int           `key:"parallel" env:"PARALLEL, overwrite" validate:"gte=1,lte=64"`
	OutputDir      string        `key:"output-dir" env:"OUTPUT_DIR, overwrite"`
}

// Defaults returns the stock parameters.
func Defaults() Params {
	c := pipeline.DefaultConfig()
	return Params{
		ThresholdDB:    c.ThresholdDB,
		MinSilence:     c.MinSilence,
		SeekStep:       c.SeekStep,
		ChunkWindow:    c.ChunkWindow,
		ChunkThreshold: c.ChunkModeThreshold,
		ChunkOverlap:   c.ChunkOverlap,
		Parallel:       c.Parallel,
	}
}

// Pipeline converts p to the orchestrator configuration.
func (p Params) Pipeline() pipeline.Config {
	return pipeline.Config{
		ThresholdDB:        p.ThresholdDB,
		MinSilence:         p.MinSilence,
		SeekStep:           p.SeekStep,
		ChunkWindow:        p.ChunkWindow,
		ChunkModeThreshold: p.ChunkThreshold,
		ChunkOverlap:       p.ChunkOverlap,
		Parallel:           p.Parallel,
	}
}

// Finalize normalizes the threshold and validates the result.
func (p Params) Finalize() (Params, error) {
	p.ThresholdDB = NormalizeThreshold(p.ThresholdDB)
	return p, p.Validate()
}

// NormalizeThreshold maps a positive threshold, as written in legacy job
// files (0.5 meaning -50 dBFS), onto the negative dBFS scale.
func NormalizeThreshold(db float64) float64 {
	if db > 0 {
		return -math.Abs(db * 100)
	}
	return db
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if k := f.Tag.Get("key"); k != "" {
			return k
		}
		return f.Name
	})
	return v
}

// Validate checks every field and reports all violations at once.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s %v violates %s", fe.Field(), fe.Value(), rule))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// CheckValue parses value for key on top of the defaults and validates the
// result, so a bad setting is refused before it reaches the config file.
func CheckValue(key, value string) error {
	if !IsKey(key) {
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	p := Defaults()
	if err := p.applyKeys(map[string]string{key: value}); err != nil {
		return err
	}
	_, err := p.Finalize()
	return err
}

// EnvVar returns the environment variable that overrides key, or "" for
// an unknown key.
func EnvVar(key string) string {
	t := reflect.TypeOf(Params{})
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get("key") != key {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		return EnvPrefix + strings.TrimSpace(name)
	}
	return ""
}

// applyKeys overlays key=value settings onto p.
func (p *Params) applyKeys(data map[string]string) error {
	for key, raw := range data {
		var err error
		switch key {
		case KeyThreshold:
			p.ThresholdDB, err = strconv.ParseFloat(raw, 64)
		case KeyMinSilence:
			p.MinSilence, err = ParseDuration(raw)
		case KeySeekStep:
			p.SeekStep, err = ParseDuration(raw)
		case KeyChunkWindow:
			p.ChunkWindow, err = ParseDuration(raw)
		case KeyChunkThreshold:
			p.ChunkThreshold, err = ParseDuration(raw)
		case KeyChunkOverlap:
			p.ChunkOverlap, err = ParseDuration(raw)
		case KeyParallel:
			p.Parallel, err = strconv.Atoi(raw)
		case KeyOutputDir:
			p.OutputDir = raw
		default:
			// Unknown keys are tolerated so older binaries can read newer files.
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, raw, err)
		}
	}
	return nil
}

// ParseDuration accepts Go durations ("500ms", "10m") and bare seconds ("0.5").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(math.Round(secs * float64(time.Second))), nil
}
