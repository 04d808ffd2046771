// Package retry retries store operations that fail for transient reasons.
//
// An Executor combines a pgdash.ErrorClassifier, which decides whether a
// failure is worth another attempt, with a pgdash.BackoffStrategy, which
// decides how long to wait before it:
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3, retry.WithInitialDelay(100*time.Millisecond)),
//	)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// The Postgres connectors retry pool creation this way; the SQLite store
// retries writes that hit a locked database file.
package retry
