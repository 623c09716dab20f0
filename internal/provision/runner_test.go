package provision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fluxwms/dashforge/internal/catalog"
	"github.com/fluxwms/dashforge/internal/superset"
	"github.com/fluxwms/dashforge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSuperset is a stateful stand-in for the BI backend. Created resources
// persist across requests, so a second run against the same instance
// exercises real idempotence rather than canned responses.
type fakeSuperset struct {
	srv    *httptest.Server
	nextID int64

	// rows created so far, keyed by kind path
	rows map[string][]map[string]any

	// reject maps "<path>:<name>" to true; matching creations get a 422
	reject map[string]bool

	creates int
}

func newFakeSuperset(t *testing.T) *fakeSuperset {
	t.Helper()
	f := &fakeSuperset{
		nextID: 100,
		rows:   make(map[string][]map[string]any),
		reject: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login/", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s"})
	})
	mux.HandleFunc("POST /api/v1/security/login", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("GET /api/v1/security/csrf_token/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "csrf"})
	})

	for _, path := range []string{"/api/v1/database/", "/api/v1/dataset/", "/api/v1/chart/", "/api/v1/dashboard/"} {
		path := path
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": f.rows[path]})
		})
		mux.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]any
			_ = json.NewDecoder(r.Body).Decode(&payload)
			name := resourceName(path, payload)
			if f.reject[path+":"+name] {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(map[string]any{"message": "rejected"})
				return
			}
			f.nextID++
			f.creates++
			row := map[string]any{"id": f.nextID}
			for k, v := range payload {
				row[k] = v
			}
			f.rows[path] = append(f.rows[path], row)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": f.nextID})
		})
	}

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func resourceName(path string, payload map[string]any) string {
	switch {
	case strings.Contains(path, "database"):
		s, _ := payload["database_name"].(string)
		return s
	case strings.Contains(path, "dataset"):
		s, _ := payload["table_name"].(string)
		return s
	case strings.Contains(path, "chart"):
		s, _ := payload["slice_name"].(string)
		return s
	default:
		s, _ := payload["slug"].(string)
		return s
	}
}

func (f *fakeSuperset) dial(t *testing.T) *superset.Session {
	t.Helper()
	s, err := superset.Dial(context.Background(), superset.Config{
		BaseURL:  f.srv.URL,
		Username: "admin",
		Password: "admin",
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func (f *fakeSuperset) dashboardRow(slug string) map[string]any {
	for _, row := range f.rows["/api/v1/dashboard/"] {
		if row["slug"] == slug {
			return row
		}
	}
	return nil
}

func testDatabase() superset.DatabaseSpec {
	return superset.DatabaseSpec{
		DatabaseName:  "Trino - Test",
		Engine:        "trino",
		SQLAlchemyURI: "trino://trino@localhost:8080/iceberg",
	}
}

func testFamily() catalog.Family {
	return catalog.Family{
		Title: "Order Flow Tracker",
		Slug:  "order-flow-tracker",
		Dataset: catalog.DatasetSource{
			Virtual: &catalog.VirtualDataset{Name: "order_flow", SQL: "SELECT 1"},
		},
		Charts: []catalog.ChartDef{
			{Name: "Orders by Status", VizType: "pie", Params: map[string]any{}},
			{Name: "Order Timeline", VizType: "echarts_timeseries_line", Params: map[string]any{}},
			{Name: "Order Table", VizType: "table", Params: map[string]any{}},
		},
	}
}

func newRunner(t *testing.T, f *fakeSuperset, families ...catalog.Family) *Runner {
	t.Helper()
	return NewRunner(f.dial(t), Options{
		Database: testDatabase(),
		Families: families,
		Logger:   testutil.NewTestLogger(t),
	})
}

func TestRunCreatesEverything(t *testing.T) {
	f := newFakeSuperset(t)
	runner := newRunner(t, f, testFamily())

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	// database + dataset + 3 charts + dashboard
	assert.Equal(t, 6, summary.Count(StatusCreated))
	assert.Zero(t, summary.Count(StatusFailed))
	assert.NotEmpty(t, summary.RunID)
	assert.True(t, summary.Available(superset.KindDashboard, "order-flow-tracker"))
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFakeSuperset(t)

	first, err := newRunner(t, f, testFamily()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, first.Count(StatusCreated))
	createsAfterFirst := f.creates

	second, err := newRunner(t, f, testFamily()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, createsAfterFirst, f.creates, "a second run must create nothing")
	assert.Equal(t, 6, second.Count(StatusExists))
	assert.Zero(t, second.Count(StatusCreated))
}

func TestRunDatabaseRejectedAbortsBeforeDownstream(t *testing.T) {
	f := newFakeSuperset(t)
	f.reject["/api/v1/database/:Trino - Test"] = true

	summary, err := newRunner(t, f, testFamily()).Run(context.Background())
	require.ErrorIs(t, err, ErrDatabaseUnavailable)

	assert.Zero(t, f.creates, "nothing downstream may be attempted")
	assert.Equal(t, 1, summary.Count(StatusFailed))
	assert.Len(t, summary.Entries, 1)
}

func TestRunDatasetRejectedSkipsFamily(t *testing.T) {
	f := newFakeSuperset(t)
	f.reject["/api/v1/dataset/:order_flow"] = true

	summary, err := newRunner(t, f, testFamily()).Run(context.Background())
	require.NoError(t, err, "a rejected dataset is a recorded outcome, not a run failure")

	assert.Equal(t, 4, summary.Count(StatusSkipped), "all charts plus the dashboard skipped")
	assert.False(t, summary.Available(superset.KindDashboard, "order-flow-tracker"))
	assert.Nil(t, f.dashboardRow("order-flow-tracker"))
}

func TestRunChartRejectedDropsFromLayout(t *testing.T) {
	f := newFakeSuperset(t)
	f.reject["/api/v1/chart/:Order Timeline"] = true

	summary, err := newRunner(t, f, testFamily()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Count(StatusFailed))
	assert.True(t, summary.Available(superset.KindDashboard, "order-flow-tracker"),
		"the dashboard still provisions with the surviving charts")

	row := f.dashboardRow("order-flow-tracker")
	require.NotNil(t, row)

	var position map[string]any
	require.NoError(t, json.Unmarshal([]byte(row["position_json"].(string)), &position))

	keys := make([]string, 0, 2)
	for k := range position {
		if strings.HasPrefix(k, "CHART-") {
			keys = append(keys, k)
		}
	}
	assert.Len(t, keys, 2, "the rejected chart is absent from the layout")

	// surviving charts keep their relative order in the row
	rowNode := position["ROW-1"].(map[string]any)
	children := rowNode["children"].([]any)
	require.Len(t, children, 2)
	first := children[0].(string)
	second := children[1].(string)
	assert.Less(t, first, second, "creation order is preserved: %s before %s", first, second)
}

func TestRunPhysicalDatasetFallsBackToVirtual(t *testing.T) {
	f := newFakeSuperset(t)
	f.reject["/api/v1/dataset/:orders"] = true

	family := testFamily()
	family.Dataset = catalog.DatasetSource{
		Physical: &catalog.PhysicalDataset{Schema: "gold", Table: "orders"},
		Virtual:  &catalog.VirtualDataset{Name: "order_flow", SQL: "SELECT 1"},
	}

	summary, err := newRunner(t, f, family).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Available(superset.KindDataset, "order_flow"),
		"the virtual form provisions when the table is missing")
	assert.Equal(t, 1, len(f.rows["/api/v1/dataset/"]))
}

func TestRunChartOnlyFamilyHasNoDashboard(t *testing.T) {
	f := newFakeSuperset(t)

	family := testFamily()
	family.Slug = ""

	summary, err := newRunner(t, f, family).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.rows["/api/v1/dashboard/"])
	for _, e := range summary.Entries {
		assert.NotEqual(t, superset.KindDashboard, e.Kind)
	}
}

func TestRunProgressCallback(t *testing.T) {
	f := newFakeSuperset(t)

	var lines []string
	runner := NewRunner(f.dial(t), Options{
		Database: testDatabase(),
		Families: []catalog.Family{testFamily()},
		Logger:   testutil.NewTestLogger(t),
		Progress: func(kind superset.Kind, name string, status Status) {
			lines = append(lines, kind.String()+" "+name+" "+string(status))
		},
	})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, lines, len(summary.Entries), "one progress line per summary entry")
	assert.Equal(t, "database Trino - Test created", lines[0])
}
