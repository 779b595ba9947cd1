// Package config holds anicache settings and loads them from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roach88/anicache/internal/aligner"
	"github.com/roach88/anicache/internal/engine"
)

// Config is the effective configuration of a comparison run.
type Config struct {
	// Aligner is the aligner executable, resolved through PATH.
	Aligner string `yaml:"aligner" toml:"aligner"`

	// Database is the cache file. Empty disables caching.
	Database string `yaml:"database" toml:"database"`

	CPUs                int    `yaml:"cpus" toml:"cpus"`
	BatchSize           int    `yaml:"batch_size" toml:"batch_size"`
	SequentialThreshold int    `yaml:"sequential_threshold" toml:"sequential_threshold"`
	FileExt             string `yaml:"file_ext" toml:"file_ext"`

	// Precheck skips worker startup when every requested pair is cached.
	Precheck bool `yaml:"precheck" toml:"precheck"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Aligner:             aligner.DefaultProgram,
		CPUs:                runtime.NumCPU(),
		BatchSize:           engine.DefaultBatchSize,
		SequentialThreshold: engine.DefaultSequentialThreshold,
		FileExt:             ".fna",
	}
}

// Load reads path over the defaults. The format is chosen by extension:
// .yaml/.yml or .toml. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q: use .yaml, .yml or .toml", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Aligner == "" {
		return errors.New("aligner must not be empty")
	}
	if c.CPUs < 1 {
		return fmt.Errorf("cpus must be positive, got %d", c.CPUs)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.SequentialThreshold < 0 {
		return fmt.Errorf("sequential_threshold must not be negative, got %d", c.SequentialThreshold)
	}
	return nil
}
