// Package config holds the settings shared by the scene compiler and the CLI.
package config

import (
	"fmt"
	"os"

	"github.com/achilleasa/lbvh/bvh"
	"gopkg.in/yaml.v3"
)

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Build   BuildConfig   `yaml:"build"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// BuildConfig controls BVH construction.
type BuildConfig struct {
	// Build mesh BVHs concurrently.
	Parallel bool `yaml:"parallel"`

	// Max number of mesh BVHs built at the same time; <= 0 means one
	// goroutine per mesh.
	MaxWorkers int `yaml:"max_workers"`

	// Primitive count above which morton codes are computed in parallel.
	MortonParallelThreshold int `yaml:"morton_parallel_threshold"`
}

// OutputConfig controls the compiled scene archive.
type OutputConfig struct {
	// Store the BVH node list as a raw little-endian blob (bvh.bin) next
	// to the gob-encoded scene.
	WriteRawBvh bool `yaml:"write_raw_bvh"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "notice",
		},
		Build: BuildConfig{
			Parallel:                true,
			MaxWorkers:              0,
			MortonParallelThreshold: bvh.DefaultOptions.MortonParallelThreshold,
		},
		Output: OutputConfig{
			WriteRawBvh: true,
		},
	}
}

// Load returns the default config merged with the contents of the YAML file
// at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// BvhOptions returns the builder options for this configuration.
func (c BuildConfig) BvhOptions() bvh.Options {
	return bvh.Options{
		MortonParallelThreshold: c.MortonParallelThreshold,
	}
}
