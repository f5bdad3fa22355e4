package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/preston-fay/kie-v3-sub001/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "strict", cfg.Brand.Mode)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 15, cfg.Triage.MaxInsightsPerRun)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	toml := `
[brand]
mode = "lenient"

[log]
level = "debug"

[triage]
alpha = 0.7
beta = 0.2
gamma = 0.1
max_insights_per_run = 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kie.toml"), []byte(toml), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "lenient", cfg.Brand.Mode)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 5, cfg.Triage.MaxInsightsPerRun)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "kie.toml"), []byte("[log]\nlevel = \"debug\"\n"), 0o644))
	t.Setenv("KIE_LOG_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestValidateRejectsUnknownBrandMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KIE_BRAND_MODE", "chaotic")

	_, err := config.Load("")
	require.Error(t, err)
}

func TestExplicitConfigPathMustExist(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.Load("/does/not/exist.toml")
	require.Error(t, err)
}
