// Package report renders query results to files.
//
// ChartRenderer writes static PNG charts with gonum/plot (go-chart for pies)
// and an interactive HTML bar chart with go-echarts. WorkbookWriter writes
// an xlsx workbook with excelize, one sheet per table, with a frozen header
// row, an autofilter and a colour scale on every column after the first.
package report
