package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `{
		"out_dir": "/tmp/out",
		"blob_dir": "/tmp/blobs",
		"mode": "dir",
		"max_depth": 16,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutDir)
	assert.Equal(t, "/tmp/blobs", cfg.BlobDir)
	assert.Equal(t, ModeDir, cfg.Mode)
	assert.Equal(t, 16, cfg.MaxDepth)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty config", Config{}, false},
		{"inline mode", Config{Mode: ModeInline}, false},
		{"dir mode", Config{Mode: ModeDir}, false},
		{"unknown mode", Config{Mode: "cloud"}, true},
		{"negative depth", Config{MaxDepth: -1}, true},
		{"positive depth", Config{MaxDepth: 128}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
