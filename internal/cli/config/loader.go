package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// Default configuration values.
const (
	DefaultSupersetURL = "http://localhost:8088"
	DefaultGrafanaURL  = "http://localhost:3000"
	DefaultUser        = "admin"
	DefaultPassword    = "admin"
	DefaultNamespace   = "wms"
	DefaultOutput      = "auto"
)

// DefaultServices lists the platform services dashboards are generated for
// when the config file does not override the set.
func DefaultServices() []string {
	return []string{
		"order-api",
		"wave-api",
		"picking-api",
		"packing-api",
		"shipping-api",
		"inventory-api",
		"receiving-api",
		"routing-api",
		"consolidation-api",
		"labor-api",
	}
}

// DefaultDatasources maps each datasource kind to the uid the platform's
// provisioning gives it.
func DefaultDatasources() map[string]string {
	return map[string]string{
		"prometheus": "prometheus",
		"tempo":      "tempo",
		"loki":       "loki",
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > dashforge.yaml > dashforge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("dashforge.yaml"); err == nil {
		return "dashforge.yaml"
	}
	if _, err := os.Stat("dashforge.yml"); err == nil {
		return "dashforge.yml"
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"superset.url":      DefaultSupersetURL,
		"superset.username": DefaultUser,
		"superset.password": DefaultPassword,
		"grafana.url":       DefaultGrafanaURL,
		"grafana.username":  DefaultUser,
		"grafana.password":  DefaultPassword,
		"services":          DefaultServices(),
		"namespace":         DefaultNamespace,
		"datasources":       DefaultDatasources(),
		"verbose":           false,
		"output":            DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (DASHFORGE_ prefix)
	// Transform: DASHFORGE_SUPERSET_URL -> superset.url
	if err := k.Load(env.Provider("DASHFORGE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "DASHFORGE_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform --superset-url into superset.url
			key := strings.ReplaceAll(f.Name, "-", ".")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Expand ${VAR} references in credentials so passwords can live in the
	// environment instead of the config file.
	cfg.Superset.Password = expandEnvVars(cfg.Superset.Password)
	cfg.Grafana.Password = expandEnvVars(cfg.Grafana.Password)

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
