package superset

import "encoding/json"

// DatabaseSpec describes a database connection. Created once per run and
// referenced by id from every dataset.
type DatabaseSpec struct {
	DatabaseName  string
	Engine        string
	SQLAlchemyURI string

	ExposeInSQLLab bool
	AllowCTAS      bool
	AllowCVAS      bool
	AllowDML       bool
	AllowRunAsync  bool

	// Extra holds engine parameters serialized into the payload's extra field.
	Extra map[string]any
}

func (d DatabaseSpec) Kind() Kind   { return KindDatabase }
func (d DatabaseSpec) Name() string { return d.DatabaseName }

func (d DatabaseSpec) Matches(row Row) bool {
	return row.str("database_name") == d.DatabaseName
}

func (d DatabaseSpec) Payloads() []Payload {
	p := Payload{
		"database_name":    d.DatabaseName,
		"engine":           d.Engine,
		"sqlalchemy_uri":   d.SQLAlchemyURI,
		"expose_in_sqllab": d.ExposeInSQLLab,
		"allow_ctas":       d.AllowCTAS,
		"allow_cvas":       d.AllowCVAS,
		"allow_dml":        d.AllowDML,
		"allow_run_async":  d.AllowRunAsync,
	}
	if d.Extra != nil {
		p["extra"] = mustJSON(d.Extra)
	}
	return []Payload{p}
}

// PhysicalDatasetSpec points at an existing table in the warehouse.
type PhysicalDatasetSpec struct {
	DatabaseID  int64
	Schema      string
	TableName   string
	Description string
}

func (d PhysicalDatasetSpec) Kind() Kind   { return KindDataset }
func (d PhysicalDatasetSpec) Name() string { return d.TableName }

func (d PhysicalDatasetSpec) Matches(row Row) bool {
	return row.str("table_name") == d.TableName
}

func (d PhysicalDatasetSpec) Payloads() []Payload {
	p := Payload{
		"database":   d.DatabaseID,
		"schema":     d.Schema,
		"table_name": d.TableName,
	}
	if d.Description != "" {
		p["description"] = d.Description
	}
	return []Payload{p}
}

// VirtualDatasetSpec is a dataset backed by a stored SQL query rather than a
// table pointer. Schema is a hint only.
type VirtualDatasetSpec struct {
	DatabaseID int64
	TableName  string
	SQL        string
	Schema     string
}

// fallbackSchema is forced onto the second creation attempt when the first is
// rejected. Some connector configurations require a schema field on virtual
// datasets even though it is not logically needed.
const fallbackSchema = "gold"

func (d VirtualDatasetSpec) Kind() Kind   { return KindDataset }
func (d VirtualDatasetSpec) Name() string { return d.TableName }

func (d VirtualDatasetSpec) Matches(row Row) bool {
	return row.str("table_name") == d.TableName
}

func (d VirtualDatasetSpec) Payloads() []Payload {
	primary := Payload{
		"database":   d.DatabaseID,
		"table_name": d.TableName,
		"sql":        d.SQL,
	}
	if d.Schema != "" {
		primary["schema"] = d.Schema
	}

	schema := d.Schema
	if schema == "" {
		schema = fallbackSchema
	}
	alternate := Payload{
		"database":   d.DatabaseID,
		"table_name": d.TableName,
		"sql":        d.SQL,
		"schema":     schema,
	}

	return []Payload{primary, alternate}
}

// ChartSpec describes a single visualization bound to one dataset.
type ChartSpec struct {
	SliceName   string
	VizType     string
	DatasetID   int64
	Params      map[string]any
	Description string
}

func (c ChartSpec) Kind() Kind   { return KindChart }
func (c ChartSpec) Name() string { return c.SliceName }

func (c ChartSpec) Matches(row Row) bool {
	return row.str("slice_name") == c.SliceName
}

func (c ChartSpec) Payloads() []Payload {
	return []Payload{{
		"slice_name":      c.SliceName,
		"viz_type":        c.VizType,
		"datasource_id":   c.DatasetID,
		"datasource_type": "table",
		"params":          mustJSON(c.Params),
		"description":     c.Description,
	}}
}

// DashboardSpec describes a dashboard referencing zero or more charts by id.
// A zero chart id marks a chart that failed to provision; it is dropped from
// the layout without shifting the others.
type DashboardSpec struct {
	Title    string
	Slug     string
	ChartIDs []int64
	Metadata map[string]any
}

func (d DashboardSpec) Kind() Kind { return KindDashboard }

// Name returns the slug, the stable identifier for dashboards.
func (d DashboardSpec) Name() string { return d.Slug }

// Matches prefers the slug over the title: slugs are the stable identifier,
// while titles may be normalized or duplicated server-side.
func (d DashboardSpec) Matches(row Row) bool {
	if slug := row.str("slug"); slug != "" && slug == d.Slug {
		return true
	}
	return row.str("dashboard_title") == d.Title
}

func (d DashboardSpec) Payloads() []Payload {
	meta := d.Metadata
	if meta == nil {
		meta = DefaultDashboardMetadata()
	}
	return []Payload{{
		"dashboard_title": d.Title,
		"slug":            d.Slug,
		"published":       true,
		"position_json":   mustJSON(Layout(d.Title, d.ChartIDs)),
		"json_metadata":   mustJSON(meta),
	}}
}

// DefaultDashboardMetadata returns the metadata block applied to dashboards
// that do not carry their own.
func DefaultDashboardMetadata() map[string]any {
	return map[string]any{
		"timed_refresh_immune_slices": []any{},
		"expanded_slices":             map[string]any{},
		"refresh_frequency":           0,
		"default_filters":             "{}",
		"color_scheme":                "supersetColors",
	}
}

// mustJSON serializes v into the string form the backend expects for nested
// JSON fields. The inputs are fixed structures, so marshaling cannot fail.
func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
