package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, BackendFile, cfg.Backend)
	require.Equal(t, "attendance_data.csv", cfg.LedgerFile)
	require.Equal(t, "students_data.json", cfg.RegistryFile)
	require.Equal(t, "General", cfg.DefaultCategory)
	require.True(t, cfg.Flags["auto-register"])
	require.False(t, cfg.Flags["strict-methods"])
	require.NoError(t, cfg.Validate())
}

func TestConfig_Paths(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = "/data"

	require.Equal(t, filepath.Join("/data", "attendance_data.csv"), cfg.LedgerPath())
	require.Equal(t, filepath.Join("/data", "students_data.json"), cfg.RegistryPath())
	require.Equal(t, filepath.Join("/data", "evencheck.db"), cfg.SQLitePath())
	require.Equal(t, filepath.Join("/data", "evencheck.log"), cfg.LogPath())

	cfg.Log.File = "/tmp/x.log"
	require.Equal(t, "/tmp/x.log", cfg.LogPath())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"sqlite backend", func(c *Config) { c.Backend = BackendSQLite }, ""},
		{"empty backend", func(c *Config) { c.Backend = "" }, ""},
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, "backend must be"},
		{"json output", func(c *Config) { c.Output = OutputJSON }, ""},
		{"unknown output", func(c *Config) { c.Output = "xml" }, "output must be"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, "watch.debounce"},
		{"negative metrics interval", func(c *Config) { c.Watch.MetricsInterval = -time.Second }, "watch.metrics_interval"},
		{"no compaction", func(c *Config) { c.Watch.CompactCron = "" }, ""},
		{"bad compact cron", func(c *Config) { c.Watch.CompactCron = "every night" }, "watch.compact_cron"},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "tracing.sample_rate"},
		{"file exporter without path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "file"
		}, "tracing.file_path"},
		{"otlp exporter without endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "tracing.otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(stringsReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.Backend, cfg.Backend)
	require.Equal(t, want.LedgerFile, cfg.LedgerFile)
	require.Equal(t, want.RegistryFile, cfg.RegistryFile)
	require.Equal(t, want.SQLiteFile, cfg.SQLiteFile)
	require.Equal(t, want.Flags, cfg.Flags)
	require.Equal(t, want.Watch, cfg.Watch)
	require.Equal(t, want.Cache, cfg.Cache)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestTracingConfig_Provider(t *testing.T) {
	tc := Defaults().Tracing
	tc.Enabled = true

	pc := tc.Provider()
	require.True(t, pc.Enabled)
	require.Equal(t, "file", pc.Exporter)
	require.Equal(t, DefaultTracesFilePath(), pc.FilePath)
	require.Equal(t, "localhost:4317", pc.OTLPEndpoint)
	require.Equal(t, 1.0, pc.SampleRate)

	tc.FilePath = "/tmp/evencheck-traces.jsonl"
	require.Equal(t, "/tmp/evencheck-traces.jsonl", tc.Provider().FilePath)
}
