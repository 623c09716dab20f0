// Package catalog holds the declarative descriptions of every BI and
// observability artifact dashforge provisions: the warehouse connection, the
// dashboard families with their datasets and charts, and the per-service
// panel template sets. The SQL and query expressions are fixed strings passed
// through to the backends unmodified.
package catalog

// PhysicalDataset points at an existing warehouse table.
type PhysicalDataset struct {
	Schema      string
	Table       string
	Description string
}

// VirtualDataset is a stored SQL query registered as a dataset.
type VirtualDataset struct {
	Name   string
	SQL    string
	Schema string
}

// DatasetSource describes how a family obtains its dataset: the physical
// table is attempted first, and the virtual query is the fallback when the
// table does not exist yet (for example before the first pipeline run).
type DatasetSource struct {
	Physical *PhysicalDataset
	Virtual  *VirtualDataset
}

// ChartDef is one visualization of a family. Params is the backend's
// visualization parameter block, passed through as-is.
type ChartDef struct {
	Name        string
	VizType     string
	Params      map[string]any
	Description string
}

// Family is one dashboard family: a dataset source, its charts, and the
// dashboard that collects them. A family with an empty Slug provisions its
// charts without a dashboard.
type Family struct {
	Title       string
	Slug        string
	Description string
	Dataset     DatasetSource
	Charts      []ChartDef
}
