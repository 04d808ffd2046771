package analytics_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdash/internal/analytics"
	"github.com/vvka-141/pgdash/internal/files/filesystem"
	"github.com/vvka-141/pgdash/internal/files/loader"
	"github.com/vvka-141/pgdash/internal/logging"
	"github.com/vvka-141/pgdash/internal/query"
	testhelpers "github.com/vvka-141/pgdash/internal/testing"
	"github.com/vvka-141/pgdash/internal/testing/fixtures"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

const datasetsDir = "/work/datasets"

// fakeCharts records emitted charts by artifact file name.
type fakeCharts struct {
	specs  map[string]pgdash.ChartSpec
	tables map[string]*pgdash.Table
	fail   map[string]error
}

func newFakeCharts() *fakeCharts {
	return &fakeCharts{specs: map[string]pgdash.ChartSpec{}, tables: map[string]*pgdash.Table{}, fail: map[string]error{}}
}

func (f *fakeCharts) EmitChart(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	name := filepath.Base(path)
	if err := f.fail[name]; err != nil {
		return err
	}
	f.specs[name] = spec
	f.tables[name] = table
	return nil
}

type fakeSheets struct {
	path   string
	sheets []pgdash.Sheet
}

func (f *fakeSheets) EmitWorkbook(sheets []pgdash.Sheet, path string) error {
	f.path = path
	f.sheets = sheets
	return nil
}

func loadFiles(t *testing.T, files map[string]string) pgdash.Store {
	t.Helper()
	return loadInto(t, testhelpers.NewTestSQLiteStore(t), files)
}

func loadInto(t *testing.T, store pgdash.Store, files map[string]string) pgdash.Store {
	t.Helper()
	mfs := filesystem.NewMemoryFileSystem(datasetsDir)
	for name, content := range files {
		mfs.AddFile(datasetsDir+"/"+name, content)
	}
	report, err := loader.NewLoaderWithFS(mfs, store, logging.NewNullLogger()).LoadDirectory(context.Background(), datasetsDir)
	require.NoError(t, err)
	require.Empty(t, report.Failed())
	return store
}

type harness struct {
	charts  *fakeCharts
	sheets  *fakeSheets
	summary *pgdash.ReportSummary
}

func runReport(t *testing.T, store pgdash.Store, settings pgdash.ReportSettings, charts *fakeCharts) harness {
	t.Helper()
	if charts == nil {
		charts = newFakeCharts()
	}
	sheets := &fakeSheets{}
	reporter := analytics.NewReporter(
		query.NewRunner(store, logging.SilentObserver{}),
		charts, sheets, logging.NewNullLogger(), "/out/charts", "/out/exports",
	)
	summary, err := reporter.Run(context.Background(), analytics.Catalog(settings))
	require.NoError(t, err)
	return harness{charts: charts, sheets: sheets, summary: summary}
}

func column(t *testing.T, table *pgdash.Table, name string) []string {
	t.Helper()
	require.NotNil(t, table)
	values, err := table.Strings(name)
	require.NoError(t, err)
	return values
}

func TestCatalog_Order(t *testing.T) {
	var names, artifacts []string
	for _, agg := range analytics.Catalog(pgdash.DefaultReportSettings()) {
		names = append(names, agg.Name)
		artifacts = append(artifacts, agg.Artifact)
		for _, def := range agg.Queries {
			_, ok := def.Statement(pgdash.DialectPostgres)
			assert.True(t, ok, "%s has a postgres statement", def.Name)
			_, ok = def.Statement(pgdash.DialectSQLite)
			assert.True(t, ok, "%s has a sqlite statement", def.Name)
		}
	}

	assert.Equal(t, []string{
		"orders_by_state", "orders_by_city", "avg_delivery_delay", "orders_over_time",
		"orders_per_customer", "orders_vs_score", "orders_by_month", "export",
	}, names)
	assert.Equal(t, []string{
		"pie.png", "bar.png", "hbar.png", "line.png", "hist.png", "scatter.png", "plotly_slider.html", "report.xlsx",
	}, artifacts)
}

func TestReport_TopStatesOrderedByCountThenState(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomerOrders("a1", "city a", "A", 50).
		AddCustomerOrders("b1", "city b", "B", 30).
		AddCustomerOrders("c1", "city c", "C", 80).
		AddCustomerOrders("d1", "city d", "D", 30).
		Build())

	settings := pgdash.DefaultReportSettings()
	settings.TopStates = 3
	h := runReport(t, store, settings, nil)

	pie := h.charts.tables["pie.png"]
	assert.Equal(t, []string{"C", "A", "B"}, column(t, pie, "customer_state"))
	assert.Equal(t, []string{"80", "50", "30"}, column(t, pie, "orders_count"))
	assert.Equal(t, "Orders by State (Top 3)", h.charts.specs["pie.png"].Title)
}

func TestReport_DelayExcludesNullTimestamps(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomerOrders("sp1", "sao paulo", "SP", 2).
		AddCustomer("rj1", "rio de janeiro", "RJ").
		AddOrder(fixtures.Order{ID: "rj-o1", CustomerID: "rj1", Purchased: "2017-03-01 10:00:00", Delivered: "2017-03-20 10:00:00", Estimated: "2017-03-15 10:00:00"}).
		AddOrder(fixtures.Order{ID: "rj-o2", CustomerID: "rj1", Purchased: "2017-03-02 10:00:00", Estimated: "2017-03-15 10:00:00"}).
		AddCustomer("am1", "manaus", "AM").
		AddOrder(fixtures.Order{ID: "am-o1", CustomerID: "am1", Purchased: "2017-03-02 10:00:00", Status: "shipped"}).
		Build())

	h := runReport(t, store, pgdash.DefaultReportSettings(), nil)

	hbar := h.charts.tables["hbar.png"]
	assert.Equal(t, []string{"RJ", "SP"}, column(t, hbar, "customer_state"), "AM has no delivered orders")

	delays, err := hbar.Float64s("avg_delay")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, delays[0], 1e-6, "undelivered RJ order is excluded")
	assert.InDelta(t, -2.0, delays[1], 1e-6)
}

func TestReport_ScatterSampleIsFirstCustomersById(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomerOrders("c3", "x", "SP", 1).
		AddCustomerOrders("c1", "x", "SP", 2).
		AddCustomerOrders("c2", "x", "SP", 1).
		AddReview("r1", "c1-o1", 5).
		AddReview("r2", "c1-o2", 2).
		AddReview("r3", "c2-o1", 4).
		AddReview("r4", "c3-o1", 1).
		Build())

	settings := pgdash.DefaultReportSettings()
	settings.ScatterSample = 2
	h := runReport(t, store, settings, nil)

	scatter := h.charts.tables["scatter.png"]
	assert.Equal(t, []string{"c1", "c2"}, column(t, scatter, "customer_id"))
	scores, err := scatter.Float64s("avg_score")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, scores[0], 1e-9)
	assert.InDelta(t, 4.0, scores[1], 1e-9)
}

func TestReport_OrdersByMonthBuckets(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomer("c1", "x", "SP").
		AddOrder(fixtures.Order{ID: "o1", CustomerID: "c1", Purchased: "2017-02-28 23:59:00"}).
		AddOrder(fixtures.Order{ID: "o2", CustomerID: "c1", Purchased: "2017-01-05 08:00:00"}).
		AddOrder(fixtures.Order{ID: "o3", CustomerID: "c1", Purchased: "2017-01-31 12:00:00"}).
		AddOrder(fixtures.Order{ID: "o4", CustomerID: "c1"}).
		Build())

	h := runReport(t, store, pgdash.DefaultReportSettings(), nil)

	monthly := h.charts.tables["plotly_slider.html"]
	assert.Equal(t, []string{"2017-01", "2017-02"}, column(t, monthly, "month"))
	assert.Equal(t, []string{"2", "1"}, column(t, monthly, "orders_count"))

	line := h.charts.tables["line.png"]
	assert.Equal(t, []string{"2017-01-05", "2017-01-31", "2017-02-28"}, column(t, line, "order_date"))
}

func TestReport_HistogramCountsEveryCustomerWithOrders(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomerOrders("c1", "x", "SP", 1).
		AddCustomerOrders("c2", "x", "SP", 3).
		AddCustomer("c3", "x", "SP").
		Build())

	h := runReport(t, store, pgdash.DefaultReportSettings(), nil)

	hist := h.charts.tables["hist.png"]
	assert.Equal(t, []string{"1", "3"}, column(t, hist, "orders_per_customer"))
	assert.Equal(t, pgdash.DefaultHistogramBins, h.charts.specs["hist.png"].Bins)
}

func TestReport_ExportWorkbook(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().
		AddCustomerOrders("c2", "x", "SP", 2).
		AddCustomerOrders("c1", "y", "RJ", 1).
		Build())

	settings := pgdash.DefaultReportSettings()
	settings.ExportRows = 2
	h := runReport(t, store, settings, nil)

	assert.Equal(t, filepath.Join("/out/exports", "report.xlsx"), h.sheets.path)
	require.Len(t, h.sheets.sheets, 2)
	assert.Equal(t, "customers", h.sheets.sheets[0].Name)
	assert.Equal(t, "orders", h.sheets.sheets[1].Name)
	assert.Equal(t, []string{"c1", "c2"}, column(t, h.sheets.sheets[0].Table, "customer_id"))
	assert.Equal(t, 2, h.sheets.sheets[1].Table.RowCount(), "export is limited to ExportRows")
}

func TestReport_FailingAggregationDoesNotStopLaterOnes(t *testing.T) {
	files := fixtures.NewOlistBuilder().
		AddCustomerOrders("c1", "x", "SP", 2).
		Build()
	delete(files, fixtures.ReviewsFile)
	store := loadFiles(t, files)

	charts := newFakeCharts()
	charts.fail["pie.png"] = errors.New("font not found")
	h := runReport(t, store, pgdash.DefaultReportSettings(), charts)

	require.Len(t, h.summary.Outcomes, 8)
	failed := h.summary.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, analytics.OrdersByState, failed[0].Name)
	assert.Contains(t, failed[0].Err.Error(), "font not found")
	assert.Equal(t, analytics.OrdersVsScore, failed[1].Name)
	assert.ErrorIs(t, failed[1].Err, pgdash.ErrQueryFailed)

	assert.Contains(t, charts.tables, "plotly_slider.html")
	assert.Len(t, h.sheets.sheets, 2)
	assert.Equal(t, 6, h.summary.Produced())
}

func TestReport_EmptyResultsSkipCharts(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().Build())

	h := runReport(t, store, pgdash.DefaultReportSettings(), nil)

	assert.Empty(t, h.charts.tables)
	assert.Empty(t, h.summary.Failed())
	for _, o := range h.summary.Outcomes[:7] {
		assert.True(t, o.Skipped, "%s should be skipped", o.Name)
	}
	assert.False(t, h.summary.Outcomes[7].Skipped, "workbook is written with headers only")
	assert.Equal(t, 1, h.summary.Produced())
}

func TestReporter_StopsWhenCancelled(t *testing.T) {
	store := loadFiles(t, fixtures.NewOlistBuilder().Build())
	reporter := analytics.NewReporter(
		query.NewRunner(store, logging.SilentObserver{}),
		newFakeCharts(), &fakeSheets{}, logging.NewNullLogger(), "/out/charts", "/out/exports",
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := reporter.Run(ctx, analytics.Catalog(pgdash.DefaultReportSettings()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Outcomes)
}
