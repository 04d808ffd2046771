package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/vvka-141/pgdash/pkg/pgdash"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	defaultWidth  = 10 * vg.Inch
	defaultHeight = 6 * vg.Inch
	pieSize       = 800
	dateLayout    = "2006-01-02"
)

// ChartRenderer implements pgdash.ChartEmitter.
type ChartRenderer struct {
	width  vg.Length
	height vg.Length
}

// ChartOption configures a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithSize sets the canvas size of PNG charts.
func WithSize(width, height vg.Length) ChartOption {
	return func(r *ChartRenderer) {
		r.width = width
		r.height = height
	}
}

// NewChartRenderer creates a renderer with a 10x6 inch canvas unless overridden.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// EmitChart renders table according to spec and writes it to path,
// creating the parent directory. An empty table yields pgdash.ErrEmptyResult.
func (r *ChartRenderer) EmitChart(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	if table.RowCount() == 0 {
		return fmt.Errorf("%s: %w", spec.Title, pgdash.ErrEmptyResult)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	switch spec.Kind {
	case pgdash.ChartPie:
		return r.renderPie(spec, table, path)
	case pgdash.ChartBar, pgdash.ChartHorizontalBar:
		return r.renderBar(spec, table, path)
	case pgdash.ChartLine:
		return r.renderLine(spec, table, path)
	case pgdash.ChartHistogram:
		return r.renderHistogram(spec, table, path)
	case pgdash.ChartScatter:
		return r.renderScatter(spec, table, path)
	case pgdash.ChartAnimatedBar:
		return r.renderInteractive(spec, table, path)
	default:
		return fmt.Errorf("unsupported chart kind %s", spec.Kind)
	}
}

func labelsAndValues(spec pgdash.ChartSpec, table *pgdash.Table) ([]string, []float64, error) {
	labels, err := table.Strings(spec.LabelColumn)
	if err != nil {
		return nil, nil, err
	}
	values, err := table.Float64s(spec.ValueColumn)
	if err != nil {
		return nil, nil, err
	}
	return labels, values, nil
}

func (r *ChartRenderer) newPlot(spec pgdash.ChartSpec) *plot.Plot {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	return p
}

func (r *ChartRenderer) save(p *plot.Plot, path string) error {
	if err := p.Save(r.width, r.height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func (r *ChartRenderer) renderPie(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	labels, values, err := labelsAndValues(spec, table)
	if err != nil {
		return err
	}

	pie := chart.PieChart{
		Title:  spec.Title,
		Width:  pieSize,
		Height: pieSize,
		Values: make([]chart.Value, len(values)),
	}
	for i := range values {
		pie.Values[i] = chart.Value{Label: labels[i], Value: values[i]}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := pie.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

// renderBar draws vertical bars in table order, or horizontal bars with
// the first row at the top.
func (r *ChartRenderer) renderBar(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	labels, values, err := labelsAndValues(spec, table)
	if err != nil {
		return err
	}

	horizontal := spec.Kind == pgdash.ChartHorizontalBar
	if horizontal {
		reverse(labels)
		reverse(values)
	}

	p := r.newPlot(spec)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(18))
	if err != nil {
		return fmt.Errorf("failed to build bars: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	bars.Horizontal = horizontal
	p.Add(bars)

	if horizontal {
		p.NominalY(labels...)
		p.Add(plotter.NewGrid())
	} else {
		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
	}
	return r.save(p, path)
}

// renderLine plots dates from LabelColumn against ValueColumn.
func (r *ChartRenderer) renderLine(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	times, err := table.Times(spec.LabelColumn)
	if err != nil {
		return err
	}
	values, err := table.Float64s(spec.ValueColumn)
	if err != nil {
		return err
	}

	points := make(plotter.XYs, len(times))
	for i := range times {
		points[i].X = float64(times[i].Unix())
		points[i].Y = values[i]
	}

	p := r.newPlot(spec)
	p.X.Tick.Marker = plot.TimeTicks{Format: dateLayout}
	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line, plotter.NewGrid())
	return r.save(p, path)
}

func (r *ChartRenderer) renderHistogram(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	table, err := nonNull(table, spec.ValueColumn)
	if err != nil {
		return err
	}
	values, err := table.Float64s(spec.ValueColumn)
	if err != nil {
		return err
	}
	bins := spec.Bins
	if bins <= 0 {
		bins = pgdash.DefaultHistogramBins
	}

	p := r.newPlot(spec)
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	hist.FillColor = plotutil.Color(0)
	p.Add(hist)
	return r.save(p, path)
}

// renderScatter plots LabelColumn (numeric) against ValueColumn.
// Rows with a NULL coordinate are left out.
func (r *ChartRenderer) renderScatter(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	table, err := nonNull(table, spec.LabelColumn, spec.ValueColumn)
	if err != nil {
		return err
	}
	xs, err := table.Float64s(spec.LabelColumn)
	if err != nil {
		return err
	}
	ys, err := table.Float64s(spec.ValueColumn)
	if err != nil {
		return err
	}

	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i].X = xs[i]
		points[i].Y = ys[i]
	}

	p := r.newPlot(spec)
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Color = plotutil.Color(0)
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter, plotter.NewGrid())
	return r.save(p, path)
}

// nonNull drops rows with NULL in any of columns and fails with
// ErrEmptyResult when nothing is left to plot.
func nonNull(table *pgdash.Table, columns ...string) (*pgdash.Table, error) {
	filtered, err := table.NonNull(columns...)
	if err != nil {
		return nil, err
	}
	if filtered.RowCount() == 0 {
		return nil, fmt.Errorf("no non-NULL values in %s: %w", strings.Join(columns, ", "), pgdash.ErrEmptyResult)
	}
	return filtered, nil
}

// renderInteractive writes a standalone HTML bar chart with a range slider
// over the categories.
func (r *ChartRenderer) renderInteractive(spec pgdash.ChartSpec, table *pgdash.Table, path string) error {
	labels, values, err := labelsAndValues(spec, table)
	if err != nil {
		return err
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: spec.Title, Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Name: labels[i], Value: v}
	}
	bar.SetXAxis(labels).AddSeries(spec.ValueColumn, data)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := bar.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

var _ pgdash.ChartEmitter = (*ChartRenderer)(nil)
