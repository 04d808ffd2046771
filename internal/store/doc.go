// Package store implements pgdash.Store on PostgreSQL (pgx) and SQLite
// (modernc.org/sqlite, pure Go).
//
// Both stores replace tables inside a single transaction and retry the whole
// transaction when the failure is transient. Query results are normalized to
// the pgdash.Table value set: nil, int64, float64, time.Time and string.
package store
