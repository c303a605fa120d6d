package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtuallist/internal/config"
	"github.com/rshade/virtuallist/internal/logging"
)

// isolateHome points VLIST_HOME at a temp dir and clears env overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VLIST_HOME", dir)
	t.Setenv("VLIST_LOG_LEVEL", "")
	t.Setenv("VLIST_LOG_FORMAT", "")
	t.Setenv("VLIST_OUTPUT_FORMAT", "")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return dir
}

func TestNew_Defaults(t *testing.T) {
	dir := isolateHome(t)

	cfg := config.New()
	assert.Equal(t, config.DefaultKeeps, cfg.List.Keeps)
	assert.Equal(t, config.DefaultEstimateSize, cfg.List.EstimateSize)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath())
	require.NoError(t, cfg.Validate())
}

func TestNew_MalformedConfigFileWarns(t *testing.T) {
	dir := isolateHome(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list: [keeps: 8\n"), 0600))

	var buf bytes.Buffer
	orig := config.Logger
	config.Logger = zerolog.New(&buf)
	t.Cleanup(func() { config.Logger = orig })

	cfg := config.New()
	assert.Equal(t, config.DefaultKeeps, cfg.List.Keeps, "defaults are kept")
	require.NoError(t, cfg.Validate())

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, path)
	assert.Contains(t, out, `"error":`)
}

func TestNew_ReadsConfigFileAndEnv(t *testing.T) {
	dir := isolateHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
list:
  keeps: 8
  estimate_size: 3
output:
  default_format: json
  precision: 1
`), 0600))
	t.Setenv("VLIST_LOG_LEVEL", "debug")

	cfg := config.New()
	assert.Equal(t, 8, cfg.List.Keeps)
	assert.Equal(t, 3.0, cfg.List.EstimateSize)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, "untouched sections keep defaults")
}

func TestSaveAndLoad(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := config.Defaults()
	cfg.List.Keeps = 17
	cfg.Logging.File = "/tmp/vlist.log"
	cfg.SetConfigPath(path)
	require.NoError(t, cfg.Save())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 17, loaded.List.Keeps)
	assert.Equal(t, "/tmp/vlist.log", loaded.Logging.File)
	assert.Equal(t, path, loaded.ConfigPath())
}

func TestSave_NoPath(t *testing.T) {
	require.Error(t, config.Defaults().Save())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{name: "defaults", modify: func(*config.Config) {}},
		{name: "zero keeps", modify: func(c *config.Config) { c.List.Keeps = 0 }, errMsg: "list.keeps"},
		{
			name:   "zero estimate",
			modify: func(c *config.Config) { c.List.EstimateSize = 0 },
			errMsg: "list.estimate_size",
		},
		{
			name:   "negative threshold",
			modify: func(c *config.Config) { c.List.TopThreshold = -1 },
			errMsg: "list.top_threshold",
		},
		{
			name:   "bad format",
			modify: func(c *config.Config) { c.Output.DefaultFormat = "xml" },
			errMsg: "output.default_format",
		},
		{
			name:   "bad level",
			modify: func(c *config.Config) { c.Logging.Level = "loud" },
			errMsg: "logging.level",
		},
		{
			name:   "bad log format",
			modify: func(c *config.Config) { c.Logging.Format = "text" },
			errMsg: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := config.Defaults()

	require.NoError(t, cfg.Set("list.keeps", "12"))
	require.NoError(t, cfg.Set("list.estimate_size", "2.5"))
	require.NoError(t, cfg.Set("output.default_format", "ndjson"))

	v, err := cfg.Get("list.keeps")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	v, err = cfg.Get("list.estimate_size")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	for _, key := range config.Keys() {
		_, err = cfg.Get(key)
		assert.NoError(t, err, key)
	}

	t.Run("unknown key", func(t *testing.T) {
		_, err := cfg.Get("list.nope")
		require.ErrorIs(t, err, config.ErrUnknownKey)
		require.ErrorIs(t, cfg.Set("nope", "1"), config.ErrUnknownKey)
	})

	t.Run("invalid value keeps previous", func(t *testing.T) {
		require.ErrorIs(t, cfg.Set("list.keeps", "abc"), config.ErrInvalidConfig)
		require.ErrorIs(t, cfg.Set("list.keeps", "0"), config.ErrInvalidConfig)
		assert.Equal(t, 12, cfg.List.Keeps)
	})
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	assert.Equal(t, logging.OutputStderr, lc.ToLoggingConfig().Output)

	lc.File = "/var/log/vlist.log"
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/vlist.log", got.File)
	assert.Equal(t, "debug", got.Level)
}

func TestGlobalConfig(t *testing.T) {
	isolateHome(t)

	first := config.GetGlobalConfig()
	assert.Same(t, first, config.GetGlobalConfig())

	custom := config.Defaults()
	config.SetGlobalConfig(custom)
	assert.Same(t, custom, config.GetGlobalConfig())
}
