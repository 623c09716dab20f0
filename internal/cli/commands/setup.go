// Package commands implements the dashforge subcommands.
package commands

import (
	"log/slog"
	"os"
	"time"

	"github.com/fluxwms/dashforge/internal/cli/config"
	"github.com/fluxwms/dashforge/internal/cli/output"
	"github.com/fluxwms/dashforge/internal/grafana"
	"github.com/fluxwms/dashforge/internal/superset"
	"github.com/spf13/cobra"
)

// backendTimeout applies per HTTP round trip against either backend.
const backendTimeout = 30 * time.Second

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles config, logger, and renderer for a command.
// Backend sessions are dialed by each command as needed.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// SupersetConfig builds the BI backend connection settings.
func (c *CommandContext) SupersetConfig() superset.Config {
	return superset.Config{
		BaseURL:  c.Cfg.Superset.URL,
		Username: c.Cfg.Superset.Username,
		Password: c.Cfg.Superset.Password,
		Timeout:  backendTimeout,
		Logger:   c.Logger,
	}
}

// GrafanaClient builds a client for the observability backend.
func (c *CommandContext) GrafanaClient() *grafana.Client {
	return grafana.NewClient(grafana.Config{
		BaseURL:  c.Cfg.Grafana.URL,
		Username: c.Cfg.Grafana.Username,
		Password: c.Cfg.Grafana.Password,
		Timeout:  backendTimeout,
		Logger:   c.Logger,
	})
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Superset: config.BackendConfig{
			URL:      getEnvOrDefault("DASHFORGE_SUPERSET_URL", config.DefaultSupersetURL),
			Username: getEnvOrDefault("DASHFORGE_SUPERSET_USERNAME", config.DefaultUser),
			Password: getEnvOrDefault("DASHFORGE_SUPERSET_PASSWORD", config.DefaultPassword),
		},
		Grafana: config.BackendConfig{
			URL:      getEnvOrDefault("DASHFORGE_GRAFANA_URL", config.DefaultGrafanaURL),
			Username: getEnvOrDefault("DASHFORGE_GRAFANA_USERNAME", config.DefaultUser),
			Password: getEnvOrDefault("DASHFORGE_GRAFANA_PASSWORD", config.DefaultPassword),
		},
		Services:    config.DefaultServices(),
		Namespace:   getEnvOrDefault("DASHFORGE_NAMESPACE", config.DefaultNamespace),
		Datasources: config.DefaultDatasources(),
		Verbose:     os.Getenv("DASHFORGE_VERBOSE") == "true",
		Output:      getEnvOrDefault("DASHFORGE_OUTPUT", config.DefaultOutput),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
