// Package query executes named query definitions against a store.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Runner executes query definitions against a store and reports every
// execution to an observer. It never retries or suppresses errors.
type Runner struct {
	store    pgdash.Store
	observer pgdash.QueryObserver
}

// NewRunner creates a runner. Panics if store or observer is nil.
func NewRunner(store pgdash.Store, observer pgdash.QueryObserver) *Runner {
	if store == nil {
		panic("store cannot be nil")
	}
	if observer == nil {
		panic("observer cannot be nil")
	}
	return &Runner{store: store, observer: observer}
}

// Run selects def's statement for the store dialect and executes it.
//
// A definition without SQL for the dialect fails with pgdash.ErrUnsupportedDialect
// before touching the store. Store errors are wrapped with pgdash.ErrQueryFailed.
func (r *Runner) Run(ctx context.Context, def pgdash.QueryDefinition) (*pgdash.Table, pgdash.ExecutionMetadata, error) {
	meta := pgdash.ExecutionMetadata{Name: def.Name, StartedAt: time.Now()}

	statement, ok := def.Statement(r.store.Dialect())
	if !ok {
		err := fmt.Errorf("query %s has no %s statement: %w", def.Name, r.store.Dialect(), pgdash.ErrUnsupportedDialect)
		r.observer.ObserveQuery(meta, nil, err)
		return nil, meta, err
	}
	meta.Statement = statement

	result, err := r.store.Query(ctx, statement)
	meta.Elapsed = time.Since(meta.StartedAt)
	if err != nil {
		err = fmt.Errorf("query %s: %w: %w", def.Name, pgdash.ErrQueryFailed, err)
		r.observer.ObserveQuery(meta, nil, err)
		return nil, meta, err
	}

	result.Name = def.Name
	meta.RowCount = result.RowCount()
	r.observer.ObserveQuery(meta, result, nil)
	return result, meta, nil
}

var _ pgdash.QueryRunner = (*Runner)(nil)
