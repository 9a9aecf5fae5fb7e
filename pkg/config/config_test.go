package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyphal-go/transport-core/pkg/config"
)

func TestLoadFillsInDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("local_node: 5\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, uint16(5), cfg.LocalNode)
	require.Equal(t, 64, cfg.TXQueueCapacity)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
