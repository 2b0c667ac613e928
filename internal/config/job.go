package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Job is a run description read from a YAML file. The original tool's
// config.json is valid input: JSON is a subset of YAML.
type Job struct {
	InputPath        string   `yaml:"input_path"`
	OutputPath       string   `yaml:"output_path"` // a directory, as in config.json
	SilenceThreshold *float64 `yaml:"silence_threshold"`
	MinSilenceLength *float64 `yaml:"min_silence_length"` // seconds
	ChunkWindow      *float64 `yaml:"chunk_window"`       // seconds
	ChunkThreshold   *float64 `yaml:"chunk_threshold"`    // seconds
	ChunkOverlap     *float64 `yaml:"chunk_overlap"`      // seconds
	Parallel         *int     `yaml:"parallel"`
}

// LoadJob reads and decodes the job file at p.
func LoadJob(p string) (Job, error) {
	var j Job

	data, err := os.ReadFile(p) // #nosec G304 -- path given by the user
	if err != nil {
		return j, fmt.Errorf("failed to read job file %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, &j); err != nil {
		return j, fmt.Errorf("%w: job file %s: %w", ErrInvalid, p, err)
	}
	return j, nil
}

// Apply overlays the fields set in j onto p. An input without an output
// directory writes next to the input.
func (j Job) Apply(p *Params) error {
	if j.SilenceThreshold != nil {
		p.ThresholdDB = *j.SilenceThreshold
	}

	durations := []struct {
		name string
		src  *float64
		dst  *time.Duration
	}{
		{"min_silence_length", j.MinSilenceLength, &p.MinSilence},
		{"chunk_window", j.ChunkWindow, &p.ChunkWindow},
		{"chunk_threshold", j.ChunkThreshold, &p.ChunkThreshold},
		{"chunk_overlap", j.ChunkOverlap, &p.ChunkOverlap},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		if math.IsNaN(*d.src) || math.IsInf(*d.src, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalid, d.name)
		}
		*d.dst = time.Duration(math.Round(*d.src * float64(time.Second)))
	}

	if j.Parallel != nil {
		p.Parallel = *j.Parallel
	}

	switch {
	case j.OutputPath != "":
		p.OutputDir = j.OutputPath
	case j.InputPath != "":
		p.OutputDir = filepath.Dir(j.InputPath)
	}
	return nil
}
