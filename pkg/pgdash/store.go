package pgdash

import (
	"context"
	"time"
)

// Store is the relational store the pipeline loads into and queries from.
//
// Implementations are used sequentially by one pipeline; they need not be
// safe for concurrent use beyond what the underlying driver provides.
type Store interface {
	// Dialect reports which SQL flavour Query accepts.
	Dialect() Dialect

	// ReplaceTable atomically drops, recreates and fills the table named t.Name
	// from t.Columns and t.Rows. On failure the previous table is left intact.
	ReplaceTable(ctx context.Context, t *Table) error

	// Query runs a parameterless statement on a scoped connection and
	// materializes the result.
	Query(ctx context.Context, sql string) (*Table, error)

	Close() error
}

// QueryDefinition is a named, parameterless statement with one SQL text per dialect.
type QueryDefinition struct {
	Name string
	SQL  map[Dialect]string
}

// Statement returns the SQL for the given dialect.
func (q QueryDefinition) Statement(d Dialect) (string, bool) {
	s, ok := q.SQL[d]
	return s, ok && s != ""
}

// ExecutionMetadata describes one query execution.
type ExecutionMetadata struct {
	Name      string
	Statement string
	RowCount  int
	Elapsed   time.Duration
	StartedAt time.Time
}

// QueryObserver receives every query execution. result is nil when the query failed.
type QueryObserver interface {
	ObserveQuery(meta ExecutionMetadata, result *Table, err error)
}

// QueryRunner executes query definitions against a store.
type QueryRunner interface {
	Run(ctx context.Context, def QueryDefinition) (*Table, ExecutionMetadata, error)
}
