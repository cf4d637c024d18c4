// Package config loads the typed configuration logtail's CLI and
// recovery collaborator need: log directory layout, segment sizing, and
// the recovery policy toggle the original system exposes as
// recovery.fail_on_missing_files. Defaults are set first, then an
// optional TOML file overrides them, mirroring the teacher's
// config.Load(io.Reader)/LoadConfig(path) split.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration for the logtail module.
type Config struct {
	// Dir is the directory containing WAL segment files.
	Dir string `toml:"dir"`
	// Prefix is the segment file name prefix, before ".<version>".
	Prefix string `toml:"prefix"`
	// MaxSegmentSizeBytes bounds recovery.Writer's rollover, the point
	// at which it starts a new segment rather than appending further.
	MaxSegmentSizeBytes int64 `toml:"max_segment_size_bytes"`
	// AllowMissingLogs mirrors the original system's
	// recovery.fail_on_missing_files, inverted: when false (the
	// default) recovery.Decide returns Abort for a store with no WAL
	// segments at all; when true, it treats missing logs as FreshStore
	// instead.
	AllowMissingLogs bool `toml:"allow_missing_logs"`
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`
	// LogFormat is one of "console" or "json", selecting the CLI's
	// zerolog console writer vs. structured JSON output.
	LogFormat string `toml:"log_format"`
}

// DefaultPrefix echoes the original system's transaction log naming so a
// logtail-managed directory is never mistaken for one of the teacher's
// own ".wal" segments.
const DefaultPrefix = "neostore.transaction.db"

// Default returns a Config with the module's built-in defaults.
func Default() Config {
	return Config{
		Dir:                 "./data/logs",
		Prefix:              DefaultPrefix,
		MaxSegmentSizeBytes: 256 * 1024 * 1024,
		AllowMissingLogs:    false,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// Load parses TOML from r over a copy of Default(), so any field absent
// from r keeps its default value. A nil reader returns Default()
// unchanged.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if r == nil {
		return cfg, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse toml: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and parses path as TOML. A missing file is not an
// error: it yields Default(), matching the teacher's LoadConfig
// behaviour for an absent config file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the fields Load cannot verify on its own.
func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("config: dir is required")
	}
	if c.Prefix == "" {
		return fmt.Errorf("config: prefix is required")
	}
	if c.MaxSegmentSizeBytes <= 0 {
		return fmt.Errorf("config: max_segment_size_bytes must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log_format %q", c.LogFormat)
	}
	return nil
}

// Level maps LogLevel to a slog.Level, defaulting to Info for an empty
// or already-validated-elsewhere value.
func (c Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
