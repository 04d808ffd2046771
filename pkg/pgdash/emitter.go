package pgdash

// ChartKind selects the rendering of a ChartSpec.
type ChartKind int

const (
	ChartPie ChartKind = iota
	ChartBar
	ChartHorizontalBar
	ChartLine
	ChartHistogram
	ChartScatter
	ChartAnimatedBar // interactive HTML bar chart with a range slider
)

// String returns the name of the chart kind.
func (k ChartKind) String() string {
	switch k {
	case ChartPie:
		return "pie"
	case ChartBar:
		return "bar"
	case ChartHorizontalBar:
		return "horizontal bar"
	case ChartLine:
		return "line"
	case ChartHistogram:
		return "histogram"
	case ChartScatter:
		return "scatter"
	case ChartAnimatedBar:
		return "animated bar"
	default:
		return "unknown"
	}
}

// ChartSpec describes how a result table maps onto a chart.
//
// LabelColumn holds the category (or x value); ValueColumn the measure.
// Histograms only read ValueColumn.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	LabelColumn string
	ValueColumn string
	XLabel      string
	YLabel      string
	Bins        int
}

// ChartEmitter renders a table to a chart artifact at path.
type ChartEmitter interface {
	EmitChart(spec ChartSpec, table *Table, path string) error
}

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name  string
	Table *Table
}

// SpreadsheetEmitter writes tables to a workbook at path, one sheet each.
type SpreadsheetEmitter interface {
	EmitWorkbook(sheets []Sheet, path string) error
}
