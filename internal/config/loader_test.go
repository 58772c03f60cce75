package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remedy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Fix.Bulk)
	assert.Equal(t, 0, cfg.Fix.MaxIterations)
	assert.Equal(t, 4, cfg.Fix.Jobs)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, ColorAuto, cfg.Report.Color)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
fix:
  max_iterations: 50
  bulk: false
report:
  color: "off"
`)
	t.Setenv("REMEDY_FIX_MAX_ITERATIONS", "7")
	t.Setenv("REMEDY_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level, "file overrides defaults")
	assert.Equal(t, "json", cfg.Log.Format, "env overrides defaults")
	assert.Equal(t, 7, cfg.Fix.MaxIterations, "env overrides file")
	assert.False(t, cfg.Fix.Bulk)
	assert.Equal(t, ColorOff, cfg.Report.Color)
	assert.Equal(t, 4, cfg.Fix.Jobs, "unset keys keep defaults")
}

func TestLoadReadsDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("fix:\n  fail_fast: true\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Fix.FailFast)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad level", "log:\n  level: loud\n", "invalid log level"},
		{"bad format", "log:\n  format: xml\n", "format must be"},
		{"negative iterations", "fix:\n  max_iterations: -1\n", "fix.max_iterations"},
		{"bad color", "report:\n  color: rainbow\n", "report.color"},
		{"cache without dir", "cache:\n  enabled: true\n  dir: \"\"\n", "cache.dir"},
		{"invalid yaml", "fix: [\n", "failed to load config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestLoadRejectsLargeFile(t *testing.T) {
	path := writeConfig(t, "# "+strings.Repeat("x", maxConfigFileSize)+"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "fix.max_iterations", envKey("REMEDY_FIX_MAX_ITERATIONS"))
	assert.Equal(t, "cache.dir", envKey("REMEDY_CACHE_DIR"))
	assert.Equal(t, "verbose", envKey("REMEDY_VERBOSE"))
}
