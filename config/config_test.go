package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GRIDCALC_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRIDCALC_CONFIG_DIR", dir)

	cfg := Default()
	require.NoError(t, cfg.Set("rows", "120"))
	require.NoError(t, cfg.Set("log_level", "DEBUG"))
	require.NoError(t, Save(cfg))

	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), p)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Rows: 120, Columns: DefaultColumns, LogLevel: "debug"}, loaded)
}

func TestLoadMergesPartialFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRIDCALC_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"columns": 8}`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{Rows: DefaultRows, Columns: 8, LogLevel: DefaultLogLevel}, cfg)
}

func TestLoadBrokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRIDCALC_CONFIG_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{`), 0o600))

	_, err := Load()
	assert.ErrorContains(t, err, "parsing")
}

func TestXDGConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("GRIDCALC_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", home)

	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "gridcalc", "config.json"), p)
}

func TestSetValidation(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Set("rows", "0"))
	assert.Error(t, cfg.Set("columns", "many"))
	assert.Error(t, cfg.Set("log_level", "loud"))
	assert.Error(t, cfg.Set("colour", "red"))
	assert.Equal(t, Default(), cfg)

	require.NoError(t, cfg.Set("columns", "4"))
	assert.Equal(t, 4, cfg.Columns)
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLogLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)
}
