package catalog

import "github.com/fluxwms/dashforge/internal/grafana"

// RedMetrics returns the per-service RED dashboard family: request rate,
// error rate, and latency panels driven by the platform's HTTP middleware
// metrics. Expressions reference the service by placeholder and are expanded
// once per target service.
func RedMetrics() grafana.DashboardTemplate {
	return grafana.DashboardTemplate{
		Family:        "red-metrics",
		BaseTags:      []string{"wms"},
		Timezone:      "browser",
		SchemaVersion: 39,
		Refresh:       "30s",
		Time:          grafana.TimeRange{From: "now-1h", To: "now"},
		Panels: []grafana.PanelTemplate{
			{
				ID:          1,
				Title:       "Request Rate",
				Type:        "timeseries",
				GridPos:     grafana.GridPos{X: 0, Y: 0, W: 12, H: 8},
				Description: "Requests per second handled by ${SERVICE}",
				Datasource:  "prometheus",
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"unit":  "reqps",
						"color": map[string]any{"mode": "palette-classic"},
					},
				},
				Options: map[string]any{
					"legend": map[string]any{"displayMode": "list", "placement": "bottom"},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:        "A",
					Expr:         `sum(rate(wms_http_requests_total{service="${SERVICE}"}[5m])) by (method)`,
					LegendFormat: "{{method}}",
				}},
			},
			{
				ID:          2,
				Title:       "Error Rate",
				Type:        "timeseries",
				GridPos:     grafana.GridPos{X: 12, Y: 0, W: 12, H: 8},
				Description: "4xx/5xx responses per second",
				Datasource:  "prometheus",
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"unit":  "reqps",
						"color": map[string]any{"mode": "palette-classic"},
					},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:        "A",
					Expr:         `sum(rate(wms_http_requests_total{service="${SERVICE}",status=~"4..|5.."}[5m])) by (status)`,
					LegendFormat: "{{status}}",
				}},
			},
			{
				ID:          3,
				Title:       "Error Rate (%)",
				Type:        "stat",
				GridPos:     grafana.GridPos{X: 0, Y: 8, W: 6, H: 6},
				Description: "Share of requests ending in an error status",
				Datasource:  "prometheus",
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"unit": "percent",
						"thresholds": map[string]any{
							"mode": "absolute",
							"steps": []any{
								map[string]any{"color": "green", "value": nil},
								map[string]any{"color": "yellow", "value": 1},
								map[string]any{"color": "red", "value": 5},
							},
						},
					},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:   "A",
					Expr:    `100 * sum(rate(wms_http_requests_total{service="${SERVICE}",status=~"4..|5.."}[5m])) / sum(rate(wms_http_requests_total{service="${SERVICE}"}[5m]))`,
					Instant: true,
				}},
			},
			{
				ID:          4,
				Title:       "Requests In-Flight",
				Type:        "stat",
				GridPos:     grafana.GridPos{X: 6, Y: 8, W: 6, H: 6},
				Description: "Requests currently being processed",
				Datasource:  "prometheus",
				FieldConfig: map[string]any{
					"defaults": map[string]any{"unit": "short"},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:   "A",
					Expr:    `wms_http_requests_in_flight{service="${SERVICE}"}`,
					Instant: true,
				}},
			},
			{
				ID:          5,
				Title:       "Latency Percentiles",
				Type:        "timeseries",
				GridPos:     grafana.GridPos{X: 12, Y: 8, W: 12, H: 6},
				Description: "Request duration p50/p95/p99",
				Datasource:  "prometheus",
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"unit":  "s",
						"color": map[string]any{"mode": "palette-classic"},
					},
				},
				Options: map[string]any{
					"legend": map[string]any{"displayMode": "list", "placement": "bottom"},
				},
				Queries: []grafana.QueryTemplate{
					{
						RefID:        "A",
						Expr:         `histogram_quantile(0.50, sum(rate(wms_http_request_duration_seconds_bucket{service="${SERVICE}"}[5m])) by (le))`,
						LegendFormat: "p50",
					},
					{
						RefID:        "B",
						Expr:         `histogram_quantile(0.95, sum(rate(wms_http_request_duration_seconds_bucket{service="${SERVICE}"}[5m])) by (le))`,
						LegendFormat: "p95",
					},
					{
						RefID:        "C",
						Expr:         `histogram_quantile(0.99, sum(rate(wms_http_request_duration_seconds_bucket{service="${SERVICE}"}[5m])) by (le))`,
						LegendFormat: "p99",
					},
				},
			},
			{
				ID:          6,
				Title:       "Latency Heatmap",
				Type:        "heatmap",
				GridPos:     grafana.GridPos{X: 0, Y: 14, W: 24, H: 8},
				Description: "Request duration distribution over time",
				Datasource:  "prometheus",
				Options: map[string]any{
					"calculate": false,
					"yAxis":     map[string]any{"unit": "s"},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:        "A",
					Expr:         `sum(increase(wms_http_request_duration_seconds_bucket{service="${SERVICE}"}[1m])) by (le)`,
					LegendFormat: "{{le}}",
					Format:       "heatmap",
				}},
			},
			{
				ID:          7,
				Title:       "Top Endpoints by Request Rate",
				Type:        "table",
				GridPos:     grafana.GridPos{X: 0, Y: 22, W: 12, H: 8},
				Description: "Busiest endpoints over the selected range",
				Datasource:  "prometheus",
				Options:     map[string]any{"showHeader": true},
				Queries: []grafana.QueryTemplate{{
					RefID:   "A",
					Expr:    `topk(10, sum(rate(wms_http_requests_total{service="${SERVICE}"}[5m])) by (path, method))`,
					Format:  "table",
					Instant: true,
				}},
			},
			{
				ID:          8,
				Title:       "Top Endpoints by Error Rate",
				Type:        "table",
				GridPos:     grafana.GridPos{X: 12, Y: 22, W: 12, H: 8},
				Description: "Endpoints producing the most errors",
				Datasource:  "prometheus",
				Options:     map[string]any{"showHeader": true},
				Queries: []grafana.QueryTemplate{{
					RefID:   "A",
					Expr:    `topk(10, sum(rate(wms_http_requests_total{service="${SERVICE}",status=~"4..|5.."}[5m])) by (path, status))`,
					Format:  "table",
					Instant: true,
				}},
			},
		},
	}
}
