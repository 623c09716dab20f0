package catalog

import "github.com/fluxwms/dashforge/internal/grafana"

// Tracing returns the per-service tracing dashboard family: trace search and
// duration panels against the tracing backend, plus a correlated-logs panel
// against the log backend. The namespace parameter scopes the log query to
// the deployment namespace the services run in.
func Tracing(namespace string) grafana.DashboardTemplate {
	serviceFilter := grafana.SearchFilter{
		ID:        "service-name",
		Tag:       "service.name",
		Operator:  "=",
		Value:     []string{"${SERVICE}"},
		ValueType: "string",
		Scope:     "resource",
	}

	return grafana.DashboardTemplate{
		Family:        "tracing",
		BaseTags:      []string{"wms"},
		Timezone:      "browser",
		SchemaVersion: 39,
		Refresh:       "30s",
		Time:          grafana.TimeRange{From: "now-1h", To: "now"},
		Panels: []grafana.PanelTemplate{
			{
				ID:          1,
				Title:       "Recent Traces",
				Type:        "table",
				GridPos:     grafana.GridPos{X: 0, Y: 0, W: 24, H: 10},
				Description: "Recent traces for ${SERVICE}",
				Datasource:  "tempo",
				Options: map[string]any{
					"showHeader": true,
					"cellHeight": "sm",
				},
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"custom": map[string]any{
							"align":       "auto",
							"cellOptions": map[string]any{"type": "auto"},
							"inspect":     false,
						},
					},
					"overrides": []any{
						map[string]any{
							"matcher": map[string]any{"id": "byName", "options": "Trace ID"},
							"properties": []any{
								map[string]any{
									"id": "links",
									"value": []any{map[string]any{
										"title":       "View Trace",
										"url":         "/explore?orgId=1&left=%7B%22datasource%22:%22tempo%22,%22queries%22:%5B%7B%22refId%22:%22A%22,%22datasource%22:%7B%22type%22:%22tempo%22,%22uid%22:%22tempo%22%7D,%22queryType%22:%22traceql%22,%22limit%22:20,%22query%22:%22${__value.raw}%22%7D%5D%7D",
										"targetBlank": true,
									}},
								},
							},
						},
					},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:     "A",
					QueryType: "traceqlSearch",
					Limit:     50,
					TableType: "traces",
					Filters:   []grafana.SearchFilter{serviceFilter},
				}},
			},
			{
				ID:          2,
				Title:       "Trace Duration Distribution",
				Type:        "histogram",
				GridPos:     grafana.GridPos{X: 0, Y: 10, W: 12, H: 8},
				Description: "Distribution of trace durations",
				Datasource:  "tempo",
				FieldConfig: map[string]any{
					"defaults": map[string]any{"unit": "ms"},
				},
				Options: map[string]any{
					"legend":     map[string]any{"displayMode": "list", "placement": "bottom"},
					"bucketSize": 50,
					"combine":    false,
				},
				Transformations: []map[string]any{{
					"id":      "filterFieldsByName",
					"options": map[string]any{"include": map[string]any{"names": []any{"Duration"}}},
				}},
				Queries: []grafana.QueryTemplate{{
					RefID:     "A",
					QueryType: "traceqlSearch",
					Limit:     100,
					TableType: "traces",
					Filters:   []grafana.SearchFilter{serviceFilter},
				}},
			},
			{
				ID:          3,
				Title:       "Traces Over Time",
				Type:        "timeseries",
				GridPos:     grafana.GridPos{X: 12, Y: 10, W: 12, H: 8},
				Description: "Number of traces over time",
				Datasource:  "tempo",
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"unit":  "short",
						"color": map[string]any{"mode": "palette-classic"},
					},
				},
				Options: map[string]any{
					"legend": map[string]any{"displayMode": "list", "placement": "bottom"},
				},
				Transformations: []map[string]any{
					{
						"id":      "filterFieldsByName",
						"options": map[string]any{"include": map[string]any{"names": []any{"Start time"}}},
					},
					{
						"id": "groupBy",
						"options": map[string]any{
							"fields": map[string]any{
								"Start time": map[string]any{
									"aggregations": []any{"count"},
									"operation":    "groupby",
								},
							},
						},
					},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:     "A",
					QueryType: "traceqlSearch",
					Limit:     500,
					TableType: "traces",
					Filters:   []grafana.SearchFilter{serviceFilter},
				}},
			},
			{
				ID:          4,
				Title:       "Error Traces",
				Type:        "table",
				GridPos:     grafana.GridPos{X: 0, Y: 18, W: 24, H: 8},
				Description: "Traces with errors",
				Datasource:  "tempo",
				Options: map[string]any{
					"showHeader": true,
					"cellHeight": "sm",
				},
				FieldConfig: map[string]any{
					"defaults": map[string]any{
						"custom": map[string]any{
							"align":       "auto",
							"cellOptions": map[string]any{"type": "auto"},
						},
					},
				},
				Queries: []grafana.QueryTemplate{{
					RefID:     "A",
					QueryType: "traceql",
					Limit:     50,
					TableType: "traces",
					Query:     `{resource.service.name = "${SERVICE}" && status = error}`,
				}},
			},
			{
				ID:          5,
				Title:       "Service Logs (with Trace Correlation)",
				Type:        "logs",
				GridPos:     grafana.GridPos{X: 0, Y: 26, W: 24, H: 10},
				Description: "Logs from this service with trace IDs for correlation",
				Datasource:  "loki",
				Options: map[string]any{
					"showTime":           true,
					"showLabels":         true,
					"showCommonLabels":   false,
					"wrapLogMessage":     true,
					"prettifyLogMessage": true,
					"enableLogDetails":   true,
					"dedupStrategy":      "none",
					"sortOrder":          "Descending",
				},
				Queries: []grafana.QueryTemplate{{
					RefID:     "A",
					Expr:      `{namespace="` + namespace + `", pod=~"${SERVICE}.*"} | json | trace_id != ""`,
					QueryType: "range",
				}},
			},
		},
	}
}
