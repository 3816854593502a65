package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.HTTPAddress)
	require.Equal(t, ":9100", cfg.Server.MetricsAddress)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	require.False(t, cfg.Log.Development)
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  http_address: \":3001\"\nlog:\n  development: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":3001", cfg.Server.HTTPAddress)
	require.True(t, cfg.Log.Development)
	require.Equal(t, ":9100", cfg.Server.MetricsAddress, "unset keys keep defaults")
}
