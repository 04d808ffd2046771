package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/pgdash/internal/retry"
	"github.com/vvka-141/pgdash/pkg/pgdash"
	_ "modernc.org/sqlite"
)

// SQLiteMemory opens a private in-memory database.
const SQLiteMemory = ":memory:"

// SQLiteStore is a pgdash.Store backed by a single SQLite connection.
type SQLiteStore struct {
	db       *sql.DB
	executor *retry.Executor
}

// OpenSQLite opens (creating if needed) the database file at path.
// Use SQLiteMemory for a throwaway in-memory store.
func OpenSQLite(ctx context.Context, path string, logger pgdash.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// One connection: an in-memory database lives and dies with its connection,
	// and a file database then never contends with itself.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %v: %w", path, err, pgdash.ErrConnectionFailed)
	}

	executor := retry.NewExecutor(
		retry.NewSQLiteErrorClassifier(),
		retry.NewExponentialBackoff(pgdash.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(pgdash.DefaultRetryInitialDelay),
			retry.WithMaxDelay(pgdash.DefaultRetryMaxDelay),
		),
	).WithLogger(logger, "table replace")

	return &SQLiteStore{db: db, executor: executor}, nil
}

func (s *SQLiteStore) Dialect() pgdash.Dialect { return pgdash.DialectSQLite }

// ReplaceTable drops, recreates and fills t.Name in one transaction
// using a prepared INSERT.
func (s *SQLiteStore) ReplaceTable(ctx context.Context, t *pgdash.Table) error {
	if err := validateTable(t); err != nil {
		return err
	}
	return s.executor.Execute(ctx, func(ctx context.Context) error {
		return s.replace(ctx, t)
	})
}

func (s *SQLiteStore) replace(ctx context.Context, t *pgdash.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ident := quoteSQLite(t.Name)

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(ident, t, pgdash.DialectSQLite, quoteSQLite)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		cols := make([]string, len(t.Columns))
		marks := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = quoteSQLite(c.Name)
			marks[i] = "?"
		}
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			ident, strings.Join(cols, ", "), strings.Join(marks, ", ")))
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", t.Name, err)
		}
		defer stmt.Close()

		args := make([]any, len(t.Columns))
		for r, row := range t.Rows {
			for i, v := range row {
				args[i] = sqliteArg(v)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert row %d into %s: %w", r+1, t.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", t.Name, err)
	}
	return nil
}

// Query runs sql on a dedicated connection. Column types are taken from
// the values: integer and float widen to float, anything else mixed is text.
func (s *SQLiteStore) Query(ctx context.Context, query string) (*pgdash.Table, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &pgdash.Table{Columns: make([]pgdash.Column, len(names))}
	for i, n := range names {
		result.Columns[i] = pgdash.Column{Name: n, Type: pgdash.ColumnUnknown}
	}

	for rows.Next() {
		raw := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make([]any, len(raw))
		for i, v := range raw {
			row[i] = normalizeValue(v)
			result.Columns[i].Type = mergeType(result.Columns[i].Type, valueType(row[i]))
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	coerceColumns(result)
	return result, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqliteArg stores timestamps in the text form SQLite's date functions understand.
func sqliteArg(v any) any {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(sqliteTimestampLayout)
	}
	return v
}

var _ pgdash.Store = (*SQLiteStore)(nil)
