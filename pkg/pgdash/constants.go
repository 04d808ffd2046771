package pgdash

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Batch completed (individual file/query failures are logged)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (unknown flags, extra args)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the store
	ExitSourceMissing   = 12 // Datasets directory missing or unreadable
)

const (
	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultManagementDB is the database used for CREATE DATABASE.
	DefaultManagementDB = "postgres"

	// DefaultAppName is the application_name prefix reported to PostgreSQL.
	DefaultAppName = "pgdash"

	// SourceExtension is the extension of discoverable source files (matched case-insensitively).
	SourceExtension = ".csv"

	// DefaultSQLitePath is the database file used by the embedded store.
	DefaultSQLitePath = "pgdash.sqlite"

	// Default locations, relative to the working directory.
	DefaultDatasetsDir = "datasets"
	DefaultChartsDir   = "charts"
	DefaultExportsDir  = "exports"
)

// Defaults for ReportSettings.
const (
	DefaultTopStates      = 10
	DefaultTopCities      = 20
	DefaultTopDelayStates = 15
	DefaultScatterSample  = 500
	DefaultExportRows     = 500
	DefaultPreviewRows    = 5
	DefaultHistogramBins  = 20
)
