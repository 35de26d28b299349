package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "westie.db", cfg.Database.Path)
	assert.Equal(t, 10000, cfg.Preprocess.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Preprocess.ReportEvery)
	assert.Equal(t, 50, cfg.Search.DisplayLimit)
	assert.Equal(t, 100, cfg.Search.DefaultLimit)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "westie.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /srv/westie.db
preprocess:
  batch_size: 500
  dj_names: [DJ Alpha]
server:
  port: 8080
log:
  format: console
`), 0o644))

	t.Setenv("WESTIE_SERVER_PORT", "7070")
	t.Setenv("WESTIE_PREPROCESS_INPUT_DIR", "/data/in")
	t.Setenv("WESTIE_PREPROCESS_DJ_NAMES", "DJ Beta, DJ Gamma")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/westie.db", cfg.Database.Path)
	assert.Equal(t, 500, cfg.Preprocess.BatchSize)
	assert.Equal(t, "/data/in", cfg.Preprocess.InputDir)
	assert.Equal(t, []string{"DJ Beta", "DJ Gamma"}, cfg.Preprocess.DJNames)
	assert.Equal(t, 7070, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WESTIE_SERVER_PORT", "0")
	_, err := Load("")
	assert.ErrorContains(t, err, "Port")

	t.Setenv("WESTIE_SERVER_PORT", "9999")
	t.Setenv("WESTIE_LOG_LEVEL", "loud")
	_, err = Load("")
	assert.ErrorContains(t, err, "Level")
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database.path", envKey("WESTIE_DATABASE_PATH"))
	assert.Equal(t, "preprocess.input_dir", envKey("WESTIE_PREPROCESS_INPUT_DIR"))
	assert.Equal(t, "debug", envKey("WESTIE_DEBUG"))
}
