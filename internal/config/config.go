// Package config provides configuration types and defaults for evencheck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/evencheck/internal/fileutil"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/scheduler"
	"github.com/zjrosen/evencheck/internal/tracing"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds all configuration options for evencheck.
type Config struct {
	DataDir         string          `mapstructure:"data_dir"`
	Backend         string          `mapstructure:"backend"` // "file" (default) or "sqlite"
	LedgerFile      string          `mapstructure:"ledger_file"`
	RegistryFile    string          `mapstructure:"registry_file"`
	SQLiteFile      string          `mapstructure:"sqlite_file"`
	DefaultCategory string          `mapstructure:"default_category"`
	DefaultMethod   string          `mapstructure:"default_method"`
	Output          string          `mapstructure:"output"` // "table" (default) or "json"
	Flags           map[string]bool `mapstructure:"flags"`
	Watch           WatchConfig     `mapstructure:"watch"`
	Cache           CacheConfig     `mapstructure:"cache"`
	Metrics         MetricsConfig   `mapstructure:"metrics"`
	Tracing         TracingConfig   `mapstructure:"tracing"`
	Log             LogConfig       `mapstructure:"log"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	// Debounce coalesces bursts of file events into one reload.
	Debounce time.Duration `mapstructure:"debounce"`

	// MetricsInterval is how often metrics are written to Metrics.Textfile.
	// Zero disables the job.
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`

	// CompactCron schedules SQLite compaction (5-field cron). Empty disables
	// it. Ignored for the file backend.
	CompactCron string `mapstructure:"compact_cron"`
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile is a Prometheus textfile-collector path. Empty disables export.
	Textfile string `mapstructure:"textfile"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	File  string `mapstructure:"file"`  // default: <data_dir>/evencheck.log
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/evencheck/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// LedgerPath returns the ledger CSV path.
func (c Config) LedgerPath() string {
	return filepath.Join(c.DataDir, c.LedgerFile)
}

// RegistryPath returns the registry JSON path.
func (c Config) RegistryPath() string {
	return filepath.Join(c.DataDir, c.RegistryFile)
}

// SQLitePath returns the SQLite database path.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, c.SQLiteFile)
}

// LogPath returns the debug log path.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "evencheck.log")
}

// Provider converts the tracing section into a tracing.Config, filling in
// the default trace file when none is set.
func (t TracingConfig) Provider() tracing.Config {
	path := t.FilePath
	if path == "" {
		path = DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     path,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
	}
}

// DefaultTracesFilePath returns ~/.config/evencheck/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "evencheck", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataDir:         ".",
		Backend:         BackendFile,
		LedgerFile:      "attendance_data.csv",
		RegistryFile:    "students_data.json",
		SQLiteFile:      "evencheck.db",
		DefaultCategory: "General",
		DefaultMethod:   "Manual",
		Output:          OutputTable,
		Flags: map[string]bool{
			"auto-register":  true,
			"strict-methods": false,
		},
		Watch: WatchConfig{
			Debounce:        250 * time.Millisecond,
			MetricsInterval: time.Minute,
			CompactCron:     "0 3 * * *",
		},
		Cache: CacheConfig{
			TTL: 30 * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// Validate checks the configuration for errors. Empty values are accepted
// where a default applies.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Backend)
	}

	switch c.Output {
	case "", OutputTable, OutputJSON:
	default:
		return fmt.Errorf("output must be %q or %q, got %q", OutputTable, OutputJSON, c.Output)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Watch.MetricsInterval < 0 {
		return fmt.Errorf("watch.metrics_interval must not be negative, got %s", c.Watch.MetricsInterval)
	}
	if c.Watch.CompactCron != "" {
		if err := scheduler.ValidateCron(c.Watch.CompactCron); err != nil {
			return fmt.Errorf("watch.compact_cron: %w", err)
		}
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}

	return ValidateTracing(c.Tracing)
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Path requirements only matter when tracing is on
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# evencheck configuration

# Directory holding the data files (default: current directory)
data_dir: .

# Storage backend: "file" (CSV ledger + JSON registry) or "sqlite"
backend: file

ledger_file: attendance_data.csv
registry_file: students_data.json
sqlite_file: evencheck.db

# Applied when a command omits them
default_category: General
default_method: Manual

# Output format: "table" or "json"
output: table

flags:
  auto-register: true    # mark registers unknown ids
  strict-methods: false  # reject methods outside the known set

# Settings for 'evencheck watch'
watch:
  debounce: 250ms
  metrics_interval: 1m
  compact_cron: "0 3 * * *"   # sqlite backend only

cache:
  ttl: 30s

# metrics:
#   textfile: /var/lib/node_exporter/evencheck.prom

# log:
#   file: ./evencheck.log
#   level: debug

# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/evencheck/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	if err := fileutil.WriteFileAtomic(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
