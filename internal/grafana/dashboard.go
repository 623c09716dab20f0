package grafana

import "fmt"

// TimeRange is the default visible window of a dashboard.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Annotation is one entry of a dashboard's annotation list. Only the built-in
// annotation layer is emitted by the builder.
type Annotation struct {
	BuiltIn    int           `json:"builtIn,omitempty"`
	Datasource DatasourceRef `json:"datasource"`
	Enable     bool          `json:"enable"`
	Hide       bool          `json:"hide"`
	IconColor  string        `json:"iconColor"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
}

// Annotations wraps the annotation list.
type Annotations struct {
	List []Annotation `json:"list"`
}

// Dashboard is a complete dashboard document.
type Dashboard struct {
	Title         string      `json:"title"`
	UID           string      `json:"uid,omitempty"`
	Tags          []string    `json:"tags"`
	Timezone      string      `json:"timezone"`
	SchemaVersion int         `json:"schemaVersion"`
	Version       int         `json:"version"`
	Refresh       string      `json:"refresh"`
	Time          TimeRange   `json:"time"`
	Panels        []Panel     `json:"panels"`
	Annotations   Annotations `json:"annotations"`
}

// DashboardPayload is the create-or-overwrite request body.
type DashboardPayload struct {
	Dashboard any    `json:"dashboard"`
	Overwrite bool   `json:"overwrite"`
	Message   string `json:"message,omitempty"`
}

// DashboardTemplate is a declarative family of per-service dashboards: a
// panel template set plus the document-level defaults they share. One
// dashboard is produced per service name.
type DashboardTemplate struct {
	// Family names the dashboard family ("red-metrics", "tracing"). It is the
	// title suffix and the tag used for clean-before-create.
	Family string

	// BaseTags are applied to every dashboard before the family and service
	// tags.
	BaseTags []string

	Timezone      string
	SchemaVersion int
	Refresh       string
	Time          TimeRange

	Panels []PanelTemplate
}

// Title returns the deterministic per-service dashboard title. Titles, not
// uids, identify dashboards of a family; the clean pass matches on this
// suffix.
func (t DashboardTemplate) Title(service string) string {
	return fmt.Sprintf("%s-%s", service, t.Family)
}

// Build expands the template set for one service. The datasources map
// provides the concrete uid for each datasource kind a panel may name;
// unmapped kinds fall back to a ref whose uid equals its type, matching
// default provisioned datasources.
func (t DashboardTemplate) Build(service string, datasources map[string]string) DashboardPayload {
	panels := make([]Panel, 0, len(t.Panels))
	for _, tpl := range t.Panels {
		ref := DatasourceRef{Type: tpl.Datasource, UID: tpl.Datasource}
		if uid, ok := datasources[tpl.Datasource]; ok && uid != "" {
			ref.UID = uid
		}
		panels = append(panels, ExpandPanel(tpl, service, ref))
	}

	tags := make([]string, 0, len(t.BaseTags)+2)
	tags = append(tags, t.BaseTags...)
	tags = append(tags, t.Family, service)

	dash := Dashboard{
		Title:         t.Title(service),
		Tags:          tags,
		Timezone:      t.Timezone,
		SchemaVersion: t.SchemaVersion,
		Version:       0,
		Refresh:       t.Refresh,
		Time:          t.Time,
		Panels:        panels,
		Annotations: Annotations{List: []Annotation{{
			BuiltIn:    1,
			Datasource: DatasourceRef{Type: "grafana", UID: "-- Grafana --"},
			Enable:     true,
			Hide:       true,
			IconColor:  "rgba(0, 211, 255, 1)",
			Name:       "Annotations & Alerts",
			Type:       "dashboard",
		}}},
	}

	return DashboardPayload{Dashboard: dash, Overwrite: true}
}
