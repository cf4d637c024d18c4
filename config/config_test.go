package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	tomlContent := `
dir = "/var/lib/logtail"
allow_missing_logs = true
`
	cfg, err := Load(strings.NewReader(tomlContent))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/logtail", cfg.Dir)
	assert.True(t, cfg.AllowMissingLogs)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, Default().MaxSegmentSizeBytes, cfg.MaxSegmentSizeBytes)
}

func TestLoad_NilReaderReturnsDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_ReadsToml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logtail.toml")
	require.NoError(t, os.WriteFile(path, []byte(`prefix = "custom.log"`+"\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.log", cfg.Prefix)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Dir = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxSegmentSizeBytes = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LogLevel = "verbose"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())
}
