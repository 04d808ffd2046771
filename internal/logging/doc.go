// Package logging provides the pgdash.Logger implementations and the
// query observer that echoes every executed statement.
//
// Available implementations:
//   - ConsoleLogger: writes to stderr, colouring prefixes when stderr is a terminal
//   - NullLogger: discards all messages (useful for testing)
//   - QueryLogObserver: prints the statement, a tabular preview and the row count
//   - SilentObserver: discards query executions
//
// All implementations are safe for concurrent use by multiple goroutines.
package logging
