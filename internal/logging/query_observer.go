package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// QueryLogObserver echoes every query execution: the statement text,
// a preview of the first rows as a table, the row count and elapsed time.
type QueryLogObserver struct {
	out         io.Writer
	previewRows int
	styled      bool
	mu          sync.Mutex
}

// NewQueryLogObserver creates an observer printing to stdout.
func NewQueryLogObserver(previewRows int) *QueryLogObserver {
	return &QueryLogObserver{out: os.Stdout, previewRows: previewRows, styled: StderrIsTerminal()}
}

// NewQueryLogObserverTo creates an unstyled observer printing to w.
func NewQueryLogObserverTo(w io.Writer, previewRows int) *QueryLogObserver {
	return &QueryLogObserver{out: w, previewRows: previewRows}
}

// ObserveQuery prints one execution. Failed executions print the statement and error.
func (o *QueryLogObserver) ObserveQuery(meta pgdash.ExecutionMetadata, result *pgdash.Table, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fmt.Fprintf(o.out, "\n%s %s\n", stylize(queryStyle, o.styled, "[SQL EXECUTED]"), meta.Name)
	fmt.Fprintln(o.out, strings.TrimSpace(meta.Statement))

	if err != nil {
		fmt.Fprintf(o.out, "%s %v\n", stylize(errorStyle, o.styled, "[FAILED]"), err)
		return
	}

	if result != nil && len(result.Columns) > 0 && o.previewRows > 0 {
		renderPreview(o.out, result.Head(o.previewRows))
	}
	fmt.Fprintf(o.out, "Rows: %d (%v)\n", meta.RowCount, meta.Elapsed.Round(time.Millisecond))
}

func renderPreview(w io.Writer, t *pgdash.Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.ColumnNames())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = pgdash.FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()
}

// SilentObserver discards query executions.
type SilentObserver struct{}

func (SilentObserver) ObserveQuery(pgdash.ExecutionMetadata, *pgdash.Table, error) {}

var (
	_ pgdash.QueryObserver = (*QueryLogObserver)(nil)
	_ pgdash.QueryObserver = SilentObserver{}
)
