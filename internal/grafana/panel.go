package grafana

import "strings"

// ServicePlaceholder is the token substituted with the target service name
// when a panel template is instantiated. Substitution is a literal whole-token
// text replacement, not a templating language.
const ServicePlaceholder = "${SERVICE}"

// DatasourceRef points a panel or query at a named datasource backend.
type DatasourceRef struct {
	Type string `json:"type"`
	UID  string `json:"uid"`
}

// GridPos places a panel on the dashboard canvas.
type GridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// SearchFilter is one attribute filter of a trace-search query.
type SearchFilter struct {
	ID        string   `json:"id"`
	Tag       string   `json:"tag"`
	Operator  string   `json:"operator"`
	Value     []string `json:"value"`
	ValueType string   `json:"valueType"`
	Scope     string   `json:"scope,omitempty"`
}

// QueryTemplate is one parameterized query definition of a panel template.
// Expr and Query may contain the service placeholder; filter values may too.
type QueryTemplate struct {
	RefID        string
	Expr         string
	Query        string
	QueryType    string
	Limit        int
	TableType    string
	Filters      []SearchFilter
	LegendFormat string
	Format       string
	Instant      bool
}

// PanelTemplate is a read-only panel definition. A template plus a concrete
// service name yields an instantiated Panel. Datasource names the datasource
// kind the panel queries ("prometheus", "tempo", "loki"); the concrete uid is
// supplied at expansion time since the same template set is reused across
// backends.
type PanelTemplate struct {
	ID              int
	Title           string
	Type            string
	GridPos         GridPos
	Description     string
	Datasource      string
	FieldConfig     map[string]any
	Options         map[string]any
	Transformations []map[string]any
	Queries         []QueryTemplate
}

// Target is a fully-instantiated panel query.
type Target struct {
	RefID        string         `json:"refId"`
	Expr         string         `json:"expr,omitempty"`
	Query        string         `json:"query,omitempty"`
	QueryType    string         `json:"queryType,omitempty"`
	Limit        int            `json:"limit,omitempty"`
	TableType    string         `json:"tableType,omitempty"`
	Filters      []SearchFilter `json:"filters,omitempty"`
	Datasource   DatasourceRef  `json:"datasource"`
	LegendFormat string         `json:"legendFormat,omitempty"`
	Format       string         `json:"format,omitempty"`
	Instant      bool           `json:"instant,omitempty"`
}

// Panel is an instantiated visualization unit.
type Panel struct {
	ID              int              `json:"id"`
	Title           string           `json:"title"`
	Type            string           `json:"type"`
	GridPos         GridPos          `json:"gridPos"`
	Description     string           `json:"description,omitempty"`
	Datasource      DatasourceRef    `json:"datasource"`
	FieldConfig     map[string]any   `json:"fieldConfig,omitempty"`
	Options         map[string]any   `json:"options,omitempty"`
	Transformations []map[string]any `json:"transformations,omitempty"`
	Targets         []Target         `json:"targets"`
}

// ExpandPanel instantiates a panel template for one service. Structural and
// presentation fields are copied verbatim; every occurrence of the service
// placeholder in query expressions and filter values is replaced with the
// literal service name. Expansion is total: a template with no queries yields
// a panel with an empty target list.
func ExpandPanel(tpl PanelTemplate, service string, ds DatasourceRef) Panel {
	panel := Panel{
		ID:              tpl.ID,
		Title:           tpl.Title,
		Type:            tpl.Type,
		GridPos:         tpl.GridPos,
		Description:     substitute(tpl.Description, service),
		Datasource:      ds,
		FieldConfig:     tpl.FieldConfig,
		Options:         tpl.Options,
		Transformations: tpl.Transformations,
		Targets:         make([]Target, 0, len(tpl.Queries)),
	}

	for _, q := range tpl.Queries {
		target := Target{
			RefID:        q.RefID,
			Expr:         substitute(q.Expr, service),
			Query:        substitute(q.Query, service),
			QueryType:    q.QueryType,
			Limit:        q.Limit,
			TableType:    q.TableType,
			Datasource:   ds,
			LegendFormat: q.LegendFormat,
			Format:       q.Format,
			Instant:      q.Instant,
		}
		for _, f := range q.Filters {
			expanded := f
			expanded.Value = make([]string, len(f.Value))
			for i, v := range f.Value {
				expanded.Value[i] = substitute(v, service)
			}
			target.Filters = append(target.Filters, expanded)
		}
		panel.Targets = append(panel.Targets, target)
	}

	return panel
}

func substitute(s, service string) string {
	return strings.ReplaceAll(s, ServicePlaceholder, service)
}
