package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/pgdash/internal/files/filesystem"
	"github.com/vvka-141/pgdash/internal/files/parser"
	"github.com/vvka-141/pgdash/internal/files/scanner"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Loader discovers source files and replaces one table per file.
type Loader struct {
	fs      filesystem.FileSystemProvider
	scanner pgdash.FileScanner
	parser  *parser.Parser
	store   pgdash.Store
	logger  pgdash.Logger
}

// NewLoader creates a loader reading from the OS filesystem.
func NewLoader(store pgdash.Store, logger pgdash.Logger) *Loader {
	return NewLoaderWithFS(filesystem.NewOSFileSystem(), store, logger)
}

// NewLoaderWithFS creates a loader reading through fsProvider.
// Panics if any argument is nil.
func NewLoaderWithFS(fsProvider filesystem.FileSystemProvider, store pgdash.Store, logger pgdash.Logger) *Loader {
	if fsProvider == nil {
		panic("fsProvider cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Loader{
		fs:      fsProvider,
		scanner: scanner.NewScannerWithFS(fsProvider),
		parser:  parser.New(),
		store:   store,
		logger:  logger,
	}
}

// LoadDirectory loads every CSV file in dir.
//
// A missing or unreadable dir returns an error wrapping pgdash.ErrSourceNotFound.
// Per-file failures are recorded in the report and do not stop the batch.
// Cancellation of ctx stops the batch between files and returns the partial
// report together with ctx's error.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) (*pgdash.LoadReport, error) {
	report := &pgdash.LoadReport{Dir: dir}

	files, err := l.scanner.ScanDirectory(dir)
	if err != nil {
		return report, err
	}

	if len(files) == 0 {
		l.logger.Info("No CSV files found in %s", dir)
		report.NoFiles = true
		return report, nil
	}

	l.logger.Verbose("Found %d CSV file(s) in %s", len(files), dir)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("load interrupted before %s: %w", file.Name, err)
		}

		l.logger.Info("Importing %s -> table `%s`", file.Name, file.TableName)
		outcome := l.loadFile(ctx, file)
		report.Outcomes = append(report.Outcomes, outcome)

		if outcome.OK() {
			l.logger.Info("  -> %d rows written to `%s`", outcome.RowCount, outcome.Table)
			if outcome.Recoded {
				l.logger.Verbose("  %s is not valid UTF-8; decoded as Windows-1252", file.Name)
			}
		} else {
			l.logger.Error("Failed to import %s: %v", file.Name, outcome.Err)
		}
	}

	l.logger.Verbose("Loaded %d of %d file(s)", len(report.Succeeded()), len(report.Outcomes))
	return report, nil
}

// loadFile parses and writes one file. The returned outcome carries any error.
func (l *Loader) loadFile(ctx context.Context, file pgdash.SourceFile) pgdash.LoadOutcome {
	start := time.Now()
	outcome := pgdash.LoadOutcome{Source: file, Table: file.TableName}

	content, err := l.fs.ReadFile(file.Path)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to read %s: %w", file.Path, err)
		return outcome
	}

	result, err := l.parser.Parse(file.TableName, content)
	if err != nil {
		outcome.Err = fmt.Errorf("failed to parse %s: %w", file.Name, err)
		return outcome
	}
	outcome.Delimiter = result.Delimiter
	outcome.Recoded = result.Recoded

	if err := l.store.ReplaceTable(ctx, result.Table); err != nil {
		outcome.Err = fmt.Errorf("failed to write table %s: %w", file.TableName, err)
		return outcome
	}

	outcome.RowCount = result.Table.RowCount()
	outcome.Elapsed = time.Since(start)
	return outcome
}
