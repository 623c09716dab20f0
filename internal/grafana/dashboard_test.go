package grafana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() DashboardTemplate {
	return DashboardTemplate{
		Family:        "red-metrics",
		BaseTags:      []string{"wms"},
		Timezone:      "browser",
		SchemaVersion: 39,
		Refresh:       "30s",
		Time:          TimeRange{From: "now-1h", To: "now"},
		Panels: []PanelTemplate{
			{ID: 1, Title: "Request Rate", Type: "timeseries", Datasource: "prometheus",
				Queries: []QueryTemplate{{RefID: "A", Expr: `sum(rate(x{service="${SERVICE}"}[5m]))`}}},
			{ID: 2, Title: "Logs", Type: "logs", Datasource: "loki",
				Queries: []QueryTemplate{{RefID: "A", Expr: `{pod=~"${SERVICE}.*"}`}}},
		},
	}
}

func TestDashboardTitle(t *testing.T) {
	tpl := testTemplate()
	assert.Equal(t, "picking-api-red-metrics", tpl.Title("picking-api"))
}

func TestBuildExpandsEveryPanel(t *testing.T) {
	tpl := testTemplate()
	payload := tpl.Build("order-api", map[string]string{"prometheus": "prom-uid", "loki": "loki-uid"})

	dash, ok := payload.Dashboard.(Dashboard)
	require.True(t, ok)
	assert.True(t, payload.Overwrite)

	assert.Equal(t, "order-api-red-metrics", dash.Title)
	assert.Equal(t, []string{"wms", "red-metrics", "order-api"}, dash.Tags)
	assert.Equal(t, 39, dash.SchemaVersion)
	assert.Equal(t, 0, dash.Version)

	require.Len(t, dash.Panels, 2)
	assert.Equal(t, "prom-uid", dash.Panels[0].Datasource.UID)
	assert.Equal(t, "loki-uid", dash.Panels[1].Datasource.UID)
	assert.Contains(t, dash.Panels[0].Targets[0].Expr, `service="order-api"`)
}

func TestBuildFallsBackToKindNamedUID(t *testing.T) {
	tpl := testTemplate()
	payload := tpl.Build("order-api", nil)

	dash := payload.Dashboard.(Dashboard)
	assert.Equal(t, DatasourceRef{Type: "prometheus", UID: "prometheus"}, dash.Panels[0].Datasource)
	assert.Equal(t, DatasourceRef{Type: "loki", UID: "loki"}, dash.Panels[1].Datasource)
}

func TestBuildIncludesBuiltinAnnotation(t *testing.T) {
	dash := testTemplate().Build("wave-api", nil).Dashboard.(Dashboard)

	require.Len(t, dash.Annotations.List, 1)
	ann := dash.Annotations.List[0]
	assert.Equal(t, 1, ann.BuiltIn)
	assert.Equal(t, "Annotations & Alerts", ann.Name)
	assert.Equal(t, "-- Grafana --", ann.Datasource.UID)
}
