package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSupersetURL, cfg.Superset.URL)
	assert.Equal(t, DefaultGrafanaURL, cfg.Grafana.URL)
	assert.Equal(t, DefaultUser, cfg.Superset.Username)
	assert.Equal(t, DefaultNamespace, cfg.Namespace)
	assert.Equal(t, DefaultServices(), cfg.Services)
	assert.Equal(t, "prometheus", cfg.Datasources["prometheus"])
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err, "an explicitly named config file must exist")
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "dashforge.yaml")
	content := `
superset:
  url: http://superset.internal:8088
  username: provisioner
grafana:
  url: http://grafana.internal:3000
namespace: production
services:
  - picking-api
  - packing-api
datasources:
  prometheus: prom-main
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://superset.internal:8088", cfg.Superset.URL)
	assert.Equal(t, "provisioner", cfg.Superset.Username)
	assert.Equal(t, DefaultPassword, cfg.Superset.Password, "unset keys keep their defaults")
	assert.Equal(t, "http://grafana.internal:3000", cfg.Grafana.URL)
	assert.Equal(t, "production", cfg.Namespace)
	assert.Equal(t, []string{"picking-api", "packing-api"}, cfg.Services)
	assert.Equal(t, "prom-main", cfg.Datasources["prometheus"])
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "dashforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: from-file\n"), 0644))

	t.Setenv("DASHFORGE_NAMESPACE", "from-env")
	t.Setenv("DASHFORGE_SUPERSET_URL", "http://env:8088")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Namespace)
	assert.Equal(t, "http://env:8088", cfg.Superset.URL)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	t.Setenv("DASHFORGE_NAMESPACE", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("namespace", "", "")
	flags.String("superset-url", "", "")
	require.NoError(t, flags.Parse([]string{"--namespace", "from-flag", "--superset-url", "http://flag:8088"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Namespace)
	assert.Equal(t, "http://flag:8088", cfg.Superset.URL)
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("namespace", "flag-default", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, DefaultNamespace, cfg.Namespace,
		"flags the user did not set must not shadow config values")
}

func TestPasswordEnvExpansion(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	dir := t.TempDir()
	path := filepath.Join(dir, "dashforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("superset:\n  password: ${BI_PASSWORD}\n"), 0644))

	t.Setenv("BI_PASSWORD", "s3cret")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Superset.Password)
}

func TestGetCurrentConfig(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	assert.Nil(t, GetCurrentConfig())

	_, err := LoadConfig("", nil)
	require.NoError(t, err)
	require.NotNil(t, GetCurrentConfig())
	assert.Equal(t, DefaultSupersetURL, GetCurrentConfig().Superset.URL)
}
