package report_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdash/internal/report"
	"github.com/vvka-141/pgdash/pkg/pgdash"
	"github.com/xuri/excelize/v2"
)

func ordersTable() *pgdash.Table {
	return &pgdash.Table{
		Columns: []pgdash.Column{
			{Name: "order_id", Type: pgdash.ColumnText},
			{Name: "items", Type: pgdash.ColumnInteger},
			{Name: "purchased_at", Type: pgdash.ColumnTimestamp},
		},
		Rows: [][]any{
			{"o1", int64(2), time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)},
			{"o2", nil, time.Date(2018, 7, 24, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestEmitWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "report.xlsx")

	err := report.NewWorkbookWriter().EmitWorkbook([]pgdash.Sheet{
		{Name: "customers", Table: statesTable()},
		{Name: "orders", Table: ordersTable()},
	}, path)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{"customers", "orders"}, f.GetSheetList())

	rows, err := f.GetRows("orders")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"order_id", "items", "purchased_at"},
		{"o1", "2", "2017-10-02 10:56:33"},
		{"o2", "", "2018-07-24"},
	}, rows)

	panes, err := f.GetPanes("orders")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	formats, err := f.GetConditionalFormats("orders")
	require.NoError(t, err)
	assert.Len(t, formats, 2, "every column after the first is shaded")
	for ref, opts := range formats {
		assert.False(t, strings.HasPrefix(ref, "A"), "first column is not shaded: %s", ref)
		require.Len(t, opts, 1)
		assert.Equal(t, "3_color_scale", opts[0].Type)
	}
	assert.Contains(t, formats, "B2:B3")
}

func TestEmitWorkbook_EmptySheetKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	empty := &pgdash.Table{Columns: []pgdash.Column{{Name: "customer_id"}, {Name: "customer_state"}}}

	require.NoError(t, report.NewWorkbookWriter().EmitWorkbook([]pgdash.Sheet{{Name: "customers", Table: empty}}, path))

	f := openWorkbook(t, path)
	rows, err := f.GetRows("customers")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"customer_id", "customer_state"}}, rows)

	formats, err := f.GetConditionalFormats("customers")
	require.NoError(t, err)
	assert.Empty(t, formats)
}

func TestEmitWorkbook_SheetNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	long := strings.Repeat("x", 40)

	require.NoError(t, report.NewWorkbookWriter().EmitWorkbook([]pgdash.Sheet{
		{Name: "a/b", Table: statesTable()},
		{Name: "A_B", Table: statesTable()},
		{Name: long, Table: statesTable()},
	}, path))

	f := openWorkbook(t, path)
	assert.Equal(t, []string{"a_b", "A_B_2", strings.Repeat("x", 31)}, f.GetSheetList())
}

func TestEmitWorkbook_NoSheets(t *testing.T) {
	err := report.NewWorkbookWriter().EmitWorkbook(nil, filepath.Join(t.TempDir(), "report.xlsx"))
	assert.ErrorIs(t, err, pgdash.ErrEmptyResult)
}
