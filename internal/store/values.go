package store

import (
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

const sqliteTimestampLayout = "2006-01-02 15:04:05"

// normalizeValue maps driver values onto the pgdash.Table value set.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string, time.Time:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case pgtype.Numeric:
		if !x.Valid || x.NaN {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	default:
		return fmt.Sprint(x)
	}
}

// valueType returns the ColumnType of a normalized value.
func valueType(v any) pgdash.ColumnType {
	switch v.(type) {
	case int64:
		return pgdash.ColumnInteger
	case float64:
		return pgdash.ColumnFloat
	case time.Time:
		return pgdash.ColumnTimestamp
	case nil:
		return pgdash.ColumnUnknown
	default:
		return pgdash.ColumnText
	}
}

// mergeType widens a column type to accommodate another observed value type.
func mergeType(current, observed pgdash.ColumnType) pgdash.ColumnType {
	switch {
	case observed == pgdash.ColumnUnknown || current == observed:
		return current
	case current == pgdash.ColumnUnknown:
		return observed
	case current.IsNumeric() && observed.IsNumeric():
		return pgdash.ColumnFloat
	default:
		return pgdash.ColumnText
	}
}

// coerceColumns rewrites integer cells as float64 in float columns and
// everything as text in text columns, so every cell matches its column type.
func coerceColumns(t *pgdash.Table) {
	for c, col := range t.Columns {
		for _, row := range t.Rows {
			switch col.Type {
			case pgdash.ColumnFloat:
				if n, ok := row[c].(int64); ok {
					row[c] = float64(n)
				}
			case pgdash.ColumnText:
				if row[c] != nil {
					if _, ok := row[c].(string); !ok {
						row[c] = pgdash.FormatValue(row[c])
					}
				}
			}
		}
	}
}

func validateTable(t *pgdash.Table) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Name)
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %q row %d has %d values, want %d", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}
