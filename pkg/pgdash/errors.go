package pgdash

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := loader.LoadDirectory(ctx, dir)
//	if errors.Is(err, pgdash.ErrSourceNotFound) {
//	    // datasets directory is missing
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the store connection could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSourceNotFound indicates the datasets directory does not exist or is not a directory.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrNoDelimiterMatched indicates a file could not be parsed with any candidate delimiter.
	ErrNoDelimiterMatched = errors.New("no delimiter produced a valid parse")

	// ErrEmptyFile indicates a source file has no header row.
	ErrEmptyFile = errors.New("file has no header row")

	// ErrQueryFailed indicates a query definition failed to execute.
	ErrQueryFailed = errors.New("query failed")

	// ErrUnsupportedDialect indicates a definition has no statement for the active store.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrEmptyResult indicates a result table has no rows to render.
	ErrEmptyResult = errors.New("empty result")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSourceNotFound):
		return ExitSourceMissing
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError matches the error messages cobra produces for command line misuse.
func isUsageError(msg string) bool {
	for _, prefix := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "accepts ", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
