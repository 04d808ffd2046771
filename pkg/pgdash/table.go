package pgdash

import (
	"fmt"
	"strconv"
	"time"
)

// Dialect identifies the SQL flavour spoken by a Store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// IsValid reports whether d is a known dialect.
func (d Dialect) IsValid() bool {
	return d == DialectPostgres || d == DialectSQLite
}

// ColumnType is the semantic type assigned to a column at runtime,
// either by the CSV loader's inference or by the store driver for query results.
type ColumnType int

const (
	ColumnUnknown ColumnType = iota // no non-empty values were observed
	ColumnText
	ColumnInteger
	ColumnFloat
	ColumnTimestamp
)

// String returns a human-readable name for the type.
func (c ColumnType) String() string {
	switch c {
	case ColumnUnknown:
		return "unknown"
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnFloat:
		return "float"
	case ColumnTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(c))
	}
}

// IsNumeric reports whether values of this type are int64 or float64.
func (c ColumnType) IsNumeric() bool {
	return c == ColumnInteger || c == ColumnFloat
}

// SQLType returns the DDL type used when creating a column of this type.
// Unknown columns are stored as text.
func (c ColumnType) SQLType(d Dialect) string {
	switch d {
	case DialectSQLite:
		switch c {
		case ColumnInteger:
			return "INTEGER"
		case ColumnFloat:
			return "REAL"
		case ColumnTimestamp:
			return "TIMESTAMP"
		default:
			return "TEXT"
		}
	default:
		switch c {
		case ColumnInteger:
			return "BIGINT"
		case ColumnFloat:
			return "DOUBLE PRECISION"
		case ColumnTimestamp:
			return "TIMESTAMP"
		default:
			return "TEXT"
		}
	}
}

// Column is a named, typed column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a row-oriented in-memory table.
//
// Cell values are nil (NULL), int64, float64, time.Time or string.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Head returns a table sharing the first n rows of t.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Name: t.Name, Columns: t.Columns, Rows: t.Rows[:n]}
}

// NonNull returns a table sharing the rows of t in which every named column
// is non-NULL.
func (t *Table) NonNull(names ...string) (*Table, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx, err := t.column(name)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}

	rows := make([][]any, 0, len(t.Rows))
rowLoop:
	for _, row := range t.Rows {
		for _, idx := range idxs {
			if row[idx] == nil {
				continue rowLoop
			}
		}
		rows = append(rows, row)
	}
	return &Table{Name: t.Name, Columns: t.Columns, Rows: rows}, nil
}

func (t *Table) column(name string) (int, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return -1, fmt.Errorf("table %q has no column %q", t.Name, name)
	}
	return idx, nil
}

// Float64s returns the named column as float64 values.
// NULL cells become 0; non-numeric cells are an error.
func (t *Table) Float64s(name string) ([]float64, error) {
	idx, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		switch v := row[idx].(type) {
		case nil:
		case int64:
			out[i] = float64(v)
		case float64:
			out[i] = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %q is not numeric", name, i, v)
			}
			out[i] = f
		default:
			return nil, fmt.Errorf("column %q row %d: unexpected %T", name, i, v)
		}
	}
	return out, nil
}

// Strings returns the named column formatted as strings. NULL cells become "".
func (t *Table) Strings(name string) ([]string, error) {
	idx, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = FormatValue(row[idx])
	}
	return out, nil
}

// Times returns the named column as time.Time values.
// Text cells are parsed as dates (2006-01-02) or timestamps (2006-01-02 15:04:05).
func (t *Table) Times(name string) ([]time.Time, error) {
	idx, err := t.column(name)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		switch v := row[idx].(type) {
		case time.Time:
			out[i] = v
		case string:
			ts, err := ParseTimestamp(v)
			if err != nil {
				return nil, fmt.Errorf("column %q row %d: %w", name, i, err)
			}
			out[i] = ts
		default:
			return nil, fmt.Errorf("column %q row %d: unexpected %T", name, i, v)
		}
	}
	return out, nil
}

// TimestampLayouts are the layouts recognised as timestamps, tried in order.
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseTimestamp parses s using TimestampLayouts.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range TimestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognised timestamp", s)
}

// FormatValue renders a cell for display. NULL renders as "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}
