package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/edge-filter-mcp/internal/filter"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLogLevel, EnvPresets, EnvWorkers, EnvTileSize} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, DefaultTileSize, cfg.TileSize)
	assert.Empty(t, cfg.PresetsPath)
	assert.False(t, cfg.Debug())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvTileSize, "64")
	t.Setenv(EnvPresets, "/etc/presets.yaml")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Debug())
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, filter.TileOptions{Size: 64, Workers: 3}, cfg.Tiles())
	assert.Equal(t, "/etc/presets.yaml", cfg.PresetsPath)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "many")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoad_FileOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogLevel, "warn")

	path := writeFile(t, "config.yaml", "workers: 8\ntile_size: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 0, cfg.TileSize)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "workers: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "zero.yaml", "workers: 0\n"))
	assert.Error(t, err)

	t.Setenv(EnvLogLevel, "chatty")
	_, err = Load("")
	assert.Error(t, err)
}

func TestConfig_Presets(t *testing.T) {
	cfg := Default()

	presets, err := cfg.Presets()
	require.NoError(t, err)
	assert.Empty(t, presets)

	cfg.PresetsPath = writeFile(t, "presets.yaml", `
outline:
  name: edge detection
  version: 1
  properties:
    type: sobol
    horizRadius: 2
`)
	presets, err = cfg.Presets()
	require.NoError(t, err)
	assert.Equal(t, []string{"outline"}, presets.Names())
	assert.Equal(t, []string{"outline"}, presets.ForFilter("edge detection"))

	cfg.PresetsPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Presets()
	assert.Error(t, err)
}

func TestConfig_LevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "nonsense"}
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}
