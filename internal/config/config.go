// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Conversion modes.
const (
	ModeInline = "inline"
	ModeDir    = "dir"
)

// Config represents the CLI configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or
// are supplied by CLI flags, which take precedence.
type Config struct {
	// Paths
	OutDir  string `json:"out_dir,omitempty"`  // Directory for converted documents (default: alongside each input)
	BlobDir string `json:"blob_dir,omitempty"` // Directory for blob files in dir mode (default: the output directory)

	// Behavior
	Mode     string `json:"mode,omitempty"`      // "inline" (data URIs) or "dir" (blob directory)
	MaxDepth int    `json:"max_depth,omitempty"` // Maximum reference recursion depth (0 = default)
	Verbose  bool   `json:"verbose,omitempty"`   // Print per-reference resolution detail
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("config error: 'max_depth' must be non-negative")
	}
	if c.Mode != "" && c.Mode != ModeInline && c.Mode != ModeDir {
		return fmt.Errorf("config error: 'mode' must be %q or %q", ModeInline, ModeDir)
	}
	return nil
}
