// ABOUTME: Tests for configuration layering and validation
// ABOUTME: Uses an injected environment so tests never touch the process env

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(Options{ConfigDir: dir, Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	yamlBody := "api_url: https://yaml.example\nstore: redis\nlog_level: debug\ntimeout: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yamlBody), 0644))

	cfg, err := Load(Options{
		ConfigDir: dir,
		Environment: map[string]string{
			"FUELWISE_API_URL": "api.example.com/",
			"FUELWISE_TIMEOUT": "10s",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://api.example.com", cfg.APIURL, "env beats yaml and gains a scheme")
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, StoreRedis, cfg.Store, "yaml beats default")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagsWin(t *testing.T) {
	cfg, err := Load(Options{
		ConfigDir:   t.TempDir(),
		Environment: map[string]string{"FUELWISE_API_URL": "http://env.example", "FUELWISE_STORE": "redis"},
		APIURL:      "flag.example/",
		Store:       "FILE",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example", cfg.APIURL)
	assert.Equal(t, StoreFile, cfg.Store)
}

func TestLoad_ConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("export_dir: /tmp/out\n"), 0644))

	cfg, err := Load(Options{Environment: map[string]string{"FUELWISE_CONFIG_DIR": dir}})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, "/tmp/out", cfg.ExportDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"bad store", map[string]string{"FUELWISE_STORE": "sqlite"}},
		{"zero timeout", map[string]string{"FUELWISE_TIMEOUT": "0s"}},
		{"unparseable timeout", map[string]string{"FUELWISE_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Options{ConfigDir: t.TempDir(), Environment: tt.environ})
			assert.Error(t, err)
		})
	}
}

func TestLoad_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("api_url: [\n"), 0644))

	_, err := Load(Options{ConfigDir: dir, Environment: map[string]string{}})
	assert.ErrorContains(t, err, FileName)
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "fuelwise"), DefaultConfigDir())
}
