package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// MonthLayout formats month bucket keys.
const MonthLayout = "2006-01"

// MonthlyCounts buckets rows by the YYYY-MM month of dateColumn and counts
// the non-NULL values of keyColumn per month. The result has columns
// "month" and countColumn, ascending by month. Rows with a NULL date are
// ignored; months without counted rows are absent.
func MonthlyCounts(dateColumn, keyColumn, countColumn string) ShapeFunc {
	return func(in *pgdash.Table) (*pgdash.Table, error) {
		dateIdx := in.ColumnIndex(dateColumn)
		if dateIdx < 0 {
			return nil, fmt.Errorf("table %q has no column %q", in.Name, dateColumn)
		}
		keyIdx := in.ColumnIndex(keyColumn)
		if keyIdx < 0 {
			return nil, fmt.Errorf("table %q has no column %q", in.Name, keyColumn)
		}

		counts := make(map[string]int64)
		for i, row := range in.Rows {
			if row[dateIdx] == nil || row[keyIdx] == nil {
				continue
			}
			month, err := monthKey(row[dateIdx])
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", dateColumn, i, err)
			}
			counts[month]++
		}

		months := make([]string, 0, len(counts))
		for m := range counts {
			months = append(months, m)
		}
		sort.Strings(months)

		out := &pgdash.Table{
			Name: in.Name,
			Columns: []pgdash.Column{
				{Name: "month", Type: pgdash.ColumnText},
				{Name: countColumn, Type: pgdash.ColumnInteger},
			},
			Rows: make([][]any, len(months)),
		}
		for i, m := range months {
			out.Rows[i] = []any{m, counts[m]}
		}
		return out, nil
	}
}

func monthKey(v any) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(MonthLayout), nil
	case string:
		ts, err := pgdash.ParseTimestamp(x)
		if err != nil {
			return "", err
		}
		return ts.Format(MonthLayout), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}
