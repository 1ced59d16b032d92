package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

func loadWithViper(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSetValue_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SetValue(path, "backend", "sqlite"))
	require.NoError(t, SetValue(path, "watch.debounce", "1s"))

	cfg := loadWithViper(t, path)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestSetValue_PreservesCommentsAndOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetValue(path, "flags.auto-register", "false"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# evencheck configuration")
	assert.Contains(t, string(data), "# mark registers unknown ids")

	cfg := loadWithViper(t, path)
	assert.False(t, cfg.Flags["auto-register"])
	assert.Equal(t, "students_data.json", cfg.RegistryFile)
}

func TestSetValue_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: table\n"), 0o600))

	require.NoError(t, SetValue(path, "output", "json"))

	cfg := loadWithViper(t, path)
	assert.Equal(t, "json", cfg.Output)
}

func TestSetValue_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: table\n"), 0o600))

	require.Error(t, SetValue(path, "output.format", "json"), "scalar cannot become a mapping")
	require.Error(t, SetValue(path, "watch..debounce", "1s"))

	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SetValue(path, "output", "json"))
}
