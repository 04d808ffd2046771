package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgdash/internal/retry"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// PostgresStore is a pgdash.Store backed by a pgx connection pool.
type PostgresStore struct {
	pool     *pgxpool.Pool
	executor *retry.Executor
}

// NewPostgresStore wraps pool. The store takes ownership: Close closes the pool.
// Panics if pool is nil.
func NewPostgresStore(pool *pgxpool.Pool, logger pgdash.Logger) *PostgresStore {
	if pool == nil {
		panic("pool cannot be nil")
	}
	executor := retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(pgdash.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(pgdash.DefaultRetryInitialDelay),
			retry.WithMaxDelay(pgdash.DefaultRetryMaxDelay),
		),
	).WithLogger(logger, "table replace")

	return &PostgresStore{pool: pool, executor: executor}
}

func (s *PostgresStore) Dialect() pgdash.Dialect { return pgdash.DialectPostgres }

// ReplaceTable drops and recreates t.Name and bulk-loads its rows with COPY,
// all in one transaction.
func (s *PostgresStore) ReplaceTable(ctx context.Context, t *pgdash.Table) error {
	if err := validateTable(t); err != nil {
		return err
	}
	return s.executor.Execute(ctx, func(ctx context.Context) error {
		return s.replace(ctx, t)
	})
}

func (s *PostgresStore) replace(ctx context.Context, t *pgdash.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ident := pgx.Identifier{t.Name}.Sanitize()

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}

	if _, err := tx.Exec(ctx, createTableSQL(ident, t, pgdash.DialectPostgres, quotePostgres)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.ColumnNames(), pgx.CopyFromRows(t.Rows))
		if err != nil {
			return fmt.Errorf("failed to copy rows into %s: %w", t.Name, err)
		}
		if int(copied) != len(t.Rows) {
			return fmt.Errorf("copied %d rows into %s, expected %d", copied, t.Name, len(t.Rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit table %s: %w", t.Name, err)
	}
	return nil
}

// Query acquires a connection, runs sql and releases the connection.
func (s *PostgresStore) Query(ctx context.Context, sql string) (*pgdash.Table, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &pgdash.Table{Columns: make([]pgdash.Column, len(fields))}
	for i, f := range fields {
		result.Columns[i] = pgdash.Column{Name: f.Name, Type: columnTypeForOID(f.DataTypeOID)}
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	coerceColumns(result)
	return result, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func columnTypeForOID(oid uint32) pgdash.ColumnType {
	switch oid {
	case pgtype.Int2OID, pgtype.Int4OID, pgtype.Int8OID:
		return pgdash.ColumnInteger
	case pgtype.Float4OID, pgtype.Float8OID, pgtype.NumericOID:
		return pgdash.ColumnFloat
	case pgtype.DateOID, pgtype.TimestampOID, pgtype.TimestamptzOID:
		return pgdash.ColumnTimestamp
	default:
		return pgdash.ColumnText
	}
}

func quotePostgres(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func createTableSQL(ident string, t *pgdash.Table, dialect pgdash.Dialect, quote func(string) string) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = quote(c.Name) + " " + c.Type.SQLType(dialect)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
}

var _ pgdash.Store = (*PostgresStore)(nil)
