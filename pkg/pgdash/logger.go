package pgdash

// Logger receives the progress messages of a run: files loaded, artifacts
// written, stages skipped. Query text and previews go to a QueryObserver instead.
//
// The pipeline calls a Logger from one goroutine at a time, but connectors log
// from pgx callbacks, so implementations must tolerate concurrent calls.
type Logger interface {
	// Verbose is emitted only with -v: resolved settings, retry attempts, server notices.
	Verbose(format string, args ...any)

	// Info reports normal progress, such as "✓ Loaded olist_orders_dataset (99441 rows)".
	Info(format string, args ...any)

	// Error reports failures, such as one unreadable file.
	Error(format string, args ...any)
}
