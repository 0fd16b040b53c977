package config_test

import (
	"testing"

	"github.com/orus-lang/orus/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToEmpty(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "", cfg.StdPath)
	require.Equal(t, "", cfg.CachePath)
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("ORUS_STD_PATH", "/opt/orus/std")
	t.Setenv("ORUS_CACHE_PATH", "/tmp/orus-cache")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "/opt/orus/std", cfg.StdPath)
	require.Equal(t, "/tmp/orus-cache", cfg.CachePath)
}
