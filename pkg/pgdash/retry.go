package pgdash

import "time"

// ErrorClassifier decides whether a failed store operation may be retried.
// The Postgres classifier inspects SQLSTATE classes and network errors; the
// SQLite one looks for a busy or locked database file.
type ErrorClassifier interface {
	IsTransient(err error) bool
}

// BackoffStrategy paces retries of connects and table writes.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attempt, counting from 0.
	NextDelay(attempt int) time.Duration

	// MaxAttempts caps the retries: 0 disables them, -1 means no limit.
	MaxAttempts() int
}
