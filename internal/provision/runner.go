// Package provision sequences the reconciliation of BI resources against the
// dashboard backend in dependency order: database connection, then per family
// its dataset, charts, and dashboard.
package provision

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fluxwms/dashforge/internal/catalog"
	"github.com/fluxwms/dashforge/internal/superset"
)

// ErrDatabaseUnavailable is returned when the database connection, the root
// of the resource DAG, could not be found or created. Nothing else is
// attempted in that case and the process exits non-zero.
var ErrDatabaseUnavailable = errors.New("database connection unavailable")

// Progress receives one line per resource attempt. Used by the CLI to print
// created / exists / failed as the run proceeds. May be nil.
type Progress func(kind superset.Kind, name string, status Status)

// Runner walks the resource DAG once, sequentially. Re-running is safe:
// every upsert matches by natural key before creating anything.
type Runner struct {
	session  *superset.Session
	database superset.DatabaseSpec
	families []catalog.Family
	logger   *slog.Logger
	progress Progress
}

// Options configures a Runner.
type Options struct {
	Database superset.DatabaseSpec
	Families []catalog.Family
	Logger   *slog.Logger
	Progress Progress
}

// NewRunner returns a runner bound to an authenticated session.
func NewRunner(session *superset.Session, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		session:  session,
		database: opts.Database,
		families: opts.Families,
		logger:   logger,
		progress: opts.Progress,
	}
}

// Run provisions every resource in the catalog. Partial success is a normal
// terminal state recorded in the summary; only two conditions are errors: a
// listing failure (aborts, to avoid duplicate creation over a transport
// fault) and an unavailable database connection (nothing downstream can be
// attempted).
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := NewSummary()

	dbID, outcome, err := r.session.Upsert(ctx, r.database)
	if err != nil {
		return summary, err
	}
	r.record(summary, r.database.Kind(), r.database.Name(), statusOf(outcome))
	if dbID == 0 {
		return summary, ErrDatabaseUnavailable
	}

	for _, family := range r.families {
		if err := r.runFamily(ctx, summary, dbID, family); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// runFamily provisions one dashboard family: dataset, charts, dashboard.
// A missing dataset skips the whole family; a missing chart is dropped from
// the dashboard layout while its siblings continue.
func (r *Runner) runFamily(ctx context.Context, summary *Summary, dbID int64, family catalog.Family) error {
	datasetID, err := r.upsertDataset(ctx, summary, dbID, family.Dataset)
	if err != nil {
		return err
	}
	if datasetID == 0 {
		r.logger.Warn("skipping family, dataset unavailable", "family", family.Title)
		for _, chart := range family.Charts {
			r.record(summary, superset.KindChart, chart.Name, StatusSkipped)
		}
		if family.Slug != "" {
			r.record(summary, superset.KindDashboard, family.Slug, StatusSkipped)
		}
		return nil
	}

	chartIDs := make([]int64, 0, len(family.Charts))
	for _, chart := range family.Charts {
		spec := superset.ChartSpec{
			SliceName:   chart.Name,
			VizType:     chart.VizType,
			DatasetID:   datasetID,
			Params:      chart.Params,
			Description: chart.Description,
		}
		id, outcome, err := r.session.Upsert(ctx, spec)
		if err != nil {
			return err
		}
		r.record(summary, spec.Kind(), spec.Name(), statusOf(outcome))
		if id != 0 {
			chartIDs = append(chartIDs, id)
		}
	}

	if family.Slug == "" {
		return nil
	}

	// An empty chart list still yields a dashboard: a valid empty row is a
	// legitimate terminal state, not an error.
	spec := superset.DashboardSpec{
		Title:    family.Title,
		Slug:     family.Slug,
		ChartIDs: chartIDs,
	}
	_, outcome, err := r.session.Upsert(ctx, spec)
	if err != nil {
		return err
	}
	r.record(summary, spec.Kind(), spec.Name(), statusOf(outcome))
	return nil
}

// upsertDataset resolves a family's dataset: physical table first, virtual
// SQL fallback when the family defines one. Returns zero when neither form
// could be provisioned.
func (r *Runner) upsertDataset(ctx context.Context, summary *Summary, dbID int64, src catalog.DatasetSource) (int64, error) {
	if src.Physical != nil {
		spec := superset.PhysicalDatasetSpec{
			DatabaseID:  dbID,
			Schema:      src.Physical.Schema,
			TableName:   src.Physical.Table,
			Description: src.Physical.Description,
		}
		id, outcome, err := r.session.Upsert(ctx, spec)
		if err != nil {
			return 0, err
		}
		if id != 0 {
			r.record(summary, spec.Kind(), spec.Name(), statusOf(outcome))
			return id, nil
		}
		if src.Virtual == nil {
			r.record(summary, spec.Kind(), spec.Name(), StatusFailed)
			return 0, nil
		}
		r.logger.Debug("physical table not available, trying SQL dataset", "table", src.Physical.Table)
	}

	if src.Virtual != nil {
		spec := superset.VirtualDatasetSpec{
			DatabaseID: dbID,
			TableName:  src.Virtual.Name,
			SQL:        src.Virtual.SQL,
			Schema:     src.Virtual.Schema,
		}
		id, outcome, err := r.session.Upsert(ctx, spec)
		if err != nil {
			return 0, err
		}
		status := statusOf(outcome)
		r.record(summary, spec.Kind(), spec.Name(), status)
		return id, nil
	}

	return 0, nil
}

func (r *Runner) record(summary *Summary, kind superset.Kind, name string, status Status) {
	summary.Add(kind, name, status)
	if r.progress != nil {
		r.progress(kind, name, status)
	}
	r.logger.Info("resource reconciled", "kind", kind.String(), "name", name, "status", string(status))
}

func statusOf(outcome superset.Outcome) Status {
	switch outcome {
	case superset.OutcomeCreated:
		return StatusCreated
	case superset.OutcomeExists:
		return StatusExists
	default:
		return StatusFailed
	}
}
