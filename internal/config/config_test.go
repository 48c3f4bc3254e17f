package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"app_key": "secret",
		"database": {"host": "localhost", "port": 5432, "user": "u", "password": "p", "db_name": "d"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.AppURL)
	require.Equal(t, 60, cfg.VerifyTTLMinutes)
	require.Equal(t, 60, cfg.ResetTTLMinutes)
	require.Equal(t, 60, cfg.ResetThrottleSeconds)
	require.Equal(t, 6, cfg.ThrottlePerMinute)
	require.Equal(t, "info", cfg.LogConfig.Level)
}

func TestLoadRequiredFields(t *testing.T) {
	for name, content := range map[string]string{
		"missing port":    `{"app_key": "k", "database": {"host": "h"}}`,
		"missing app_key": `{"port": 8080, "database": {"host": "h"}}`,
		"missing db":      `{"port": 8080, "app_key": "k"}`,
	} {
		_, err := Load(writeConfig(t, content))
		require.Error(t, err, name)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
