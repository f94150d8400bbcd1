// Package config loads the optional YAML configuration file and
// merges it with CLI flag values and built-in defaults (spec §6),
// grounded on the teacher's database.ParseGeneratorConfig.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel       = "info"
	DefaultResultLimit    = 20
	DefaultScanBufferSize = 64 * 1024
)

// Config holds the merged, final settings for a single CLI invocation.
type Config struct {
	RootDir        string
	LogLevel       string
	ResultLimit    int
	ScanBufferSize int
}

// fileConfig mirrors the YAML document shape; every field is a
// pointer so the merge step can tell "unset" apart from "zero value".
type fileConfig struct {
	RootDir        *string `yaml:"root_dir"`
	LogLevel       *string `yaml:"log_level"`
	ResultLimit    *int    `yaml:"result_limit"`
	ScanBufferSize *int    `yaml:"scan_buffer_size"`
}

// Flags holds the subset of CLI flag values that can override config
// file / default values (spec §6 precedence: config file > flag > default).
type Flags struct {
	RootDir     string
	ResultLimit int
}

// Load builds the final Config for one invocation. configPath may be
// empty, meaning no config file was given. flags carries whatever the
// CLI parsed; zero values mean "not set on the command line".
func Load(configPath string, flags Flags) (Config, error) {
	cfg := Config{
		RootDir:        flags.RootDir,
		LogLevel:       DefaultLogLevel,
		ResultLimit:    flags.ResultLimit,
		ScanBufferSize: DefaultScanBufferSize,
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}

	if configPath == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if fc.RootDir != nil {
		cfg.RootDir = *fc.RootDir
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.ResultLimit != nil {
		cfg.ResultLimit = *fc.ResultLimit
	}
	if fc.ScanBufferSize != nil {
		cfg.ScanBufferSize = *fc.ScanBufferSize
	}

	return cfg, nil
}
