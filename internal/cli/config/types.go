// Package config loads dashforge configuration from file, environment
// variables, and CLI flags.
package config

// BackendConfig holds the endpoint and credentials for one HTTP backend.
type BackendConfig struct {
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Config holds all CLI configuration options.
type Config struct {
	Superset BackendConfig `koanf:"superset"`
	Grafana  BackendConfig `koanf:"grafana"`

	// Services lists the platform services a per-service dashboard is
	// built for in each Grafana family.
	Services []string `koanf:"services"`

	// Namespace scopes log queries in the tracing dashboards.
	Namespace string `koanf:"namespace"`

	// Datasources maps a datasource kind (prometheus, tempo, loki) to the
	// provisioned datasource uid in the observability backend.
	Datasources map[string]string `koanf:"datasources"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}
