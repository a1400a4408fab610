package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/lbvh/bvh"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "notice" {
		t.Errorf("expected log level 'notice', got %s", cfg.Logging.Level)
	}
	if !cfg.Build.Parallel {
		t.Error("expected parallel builds to be enabled by default")
	}
	if cfg.Build.MortonParallelThreshold != bvh.DefaultOptions.MortonParallelThreshold {
		t.Errorf("expected morton threshold %d, got %d", bvh.DefaultOptions.MortonParallelThreshold, cfg.Build.MortonParallelThreshold)
	}
	if !cfg.Output.WriteRawBvh {
		t.Error("expected raw bvh output to be enabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
logging:
  level: "debug"

build:
  parallel: false
  max_workers: 3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Build.Parallel {
		t.Error("expected parallel to be false")
	}
	if cfg.Build.MaxWorkers != 3 {
		t.Errorf("expected 3 max workers, got %d", cfg.Build.MaxWorkers)
	}

	// Keys missing from the file keep their defaults
	if cfg.Build.MortonParallelThreshold != bvh.DefaultOptions.MortonParallelThreshold {
		t.Errorf("expected default morton threshold, got %d", cfg.Build.MortonParallelThreshold)
	}
	if !cfg.Output.WriteRawBvh {
		t.Error("expected write_raw_bvh to keep its default")
	}

	opts := cfg.Build.BvhOptions()
	if opts.MortonParallelThreshold != cfg.Build.MortonParallelThreshold {
		t.Errorf("expected builder options to carry the morton threshold; got %d", opts.MortonParallelThreshold)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != Default().Logging.Level {
		t.Fatalf("expected defaults; got level %q", cfg.Logging.Level)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("build: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}
