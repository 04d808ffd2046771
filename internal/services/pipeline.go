package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vvka-141/pgdash/internal/analytics"
	"github.com/vvka-141/pgdash/internal/db"
	"github.com/vvka-141/pgdash/internal/db/manager"
	"github.com/vvka-141/pgdash/internal/files/filesystem"
	"github.com/vvka-141/pgdash/internal/files/loader"
	"github.com/vvka-141/pgdash/internal/logging"
	"github.com/vvka-141/pgdash/internal/query"
	"github.com/vvka-141/pgdash/internal/report"
	"github.com/vvka-141/pgdash/internal/store"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// StoreOpener opens the store selected by the run configuration.
type StoreOpener func(ctx context.Context, cfg *pgdash.RunConfig) (pgdash.Store, error)

// RunResult collects the outcome of every stage of a full run.
type RunResult struct {
	// DatabaseCreated is true when bootstrap created the target database.
	DatabaseCreated bool
	Load            *pgdash.LoadReport
	Report          *pgdash.ReportSummary
}

// Pipeline wires the stages of a run: bootstrap, load and report.
// Stages run sequentially on one store.
type Pipeline struct {
	logger       pgdash.Logger
	bootstrapper *Bootstrapper
	openStore    StoreOpener
	fsProvider   filesystem.FileSystemProvider
	charts       pgdash.ChartEmitter
	sheets       pgdash.SpreadsheetEmitter
	observer     func(cfg *pgdash.RunConfig) pgdash.QueryObserver
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithStoreOpener replaces how the store is opened.
func WithStoreOpener(open StoreOpener) PipelineOption {
	return func(p *Pipeline) { p.openStore = open }
}

// WithFileSystem reads datasets from fsProvider instead of the OS.
func WithFileSystem(fsProvider filesystem.FileSystemProvider) PipelineOption {
	return func(p *Pipeline) { p.fsProvider = fsProvider }
}

// WithEmitters replaces the chart and spreadsheet emitters.
func WithEmitters(charts pgdash.ChartEmitter, sheets pgdash.SpreadsheetEmitter) PipelineOption {
	return func(p *Pipeline) {
		p.charts = charts
		p.sheets = sheets
	}
}

// WithQueryObserver replaces the query echo.
func WithQueryObserver(observer pgdash.QueryObserver) PipelineOption {
	return func(p *Pipeline) {
		p.observer = func(*pgdash.RunConfig) pgdash.QueryObserver { return observer }
	}
}

// WithBootstrapper replaces the database bootstrapper.
func WithBootstrapper(b *Bootstrapper) PipelineOption {
	return func(p *Pipeline) { p.bootstrapper = b }
}

// NewPipeline creates a pipeline with production defaults: the connector
// chosen by auth method, the OS filesystem, PNG/HTML charts, an xlsx
// workbook and query echo on stdout.
func NewPipeline(logger pgdash.Logger, options ...PipelineOption) *Pipeline {
	if logger == nil {
		panic("logger cannot be nil")
	}

	p := &Pipeline{
		logger:       logger,
		bootstrapper: NewBootstrapper(db.NewConnector, manager.New(), logger),
		fsProvider:   filesystem.NewOSFileSystem(),
		charts:       report.NewChartRenderer(),
		sheets:       report.NewWorkbookWriter(),
		observer: func(cfg *pgdash.RunConfig) pgdash.QueryObserver {
			return logging.NewQueryLogObserver(cfg.Report.PreviewRows)
		},
	}
	p.openStore = p.defaultOpenStore
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Run executes bootstrap, load and report in order.
//
// Per-file and per-aggregation failures are recorded in the result, not
// returned. Errors are returned for an unusable configuration, a store that
// cannot be opened, a missing datasets directory and cancellation.
func (p *Pipeline) Run(ctx context.Context, cfg *pgdash.RunConfig) (*RunResult, error) {
	p.logger.Verbose("Run %s starting (store: %s)", cfg.RunID, cfg.Store)

	result := &RunResult{}
	result.DatabaseCreated = p.bootstrapQuietly(ctx, cfg)

	s, err := p.openStore(ctx, cfg)
	if err != nil {
		return result, err
	}
	defer s.Close()

	result.Load, err = p.load(ctx, s, cfg)
	if err != nil {
		return result, err
	}

	result.Report, err = p.report(ctx, s, cfg)
	if err != nil {
		return result, err
	}

	p.logSummary(result)
	return result, nil
}

// Bootstrap creates the target database if needed. Unlike Run, the error
// is returned to the caller. It is a no-op for SQLite.
func (p *Pipeline) Bootstrap(ctx context.Context, cfg *pgdash.RunConfig) (bool, error) {
	if cfg.Store != pgdash.DialectPostgres {
		p.logger.Info("Bootstrap skipped: store is %s", cfg.Store)
		return false, nil
	}
	return p.bootstrapper.EnsureDatabase(ctx, cfg)
}

// Load imports the datasets directory into the store.
func (p *Pipeline) Load(ctx context.Context, cfg *pgdash.RunConfig) (*pgdash.LoadReport, error) {
	s, err := p.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return p.load(ctx, s, cfg)
}

// Report runs the aggregation catalogue against what is already loaded.
func (p *Pipeline) Report(ctx context.Context, cfg *pgdash.RunConfig) (*pgdash.ReportSummary, error) {
	s, err := p.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return p.report(ctx, s, cfg)
}

func (p *Pipeline) bootstrapQuietly(ctx context.Context, cfg *pgdash.RunConfig) bool {
	created, err := p.Bootstrap(ctx, cfg)
	if err != nil {
		p.logger.Error("Bootstrap failed, continuing: %v", err)
		return false
	}
	return created
}

func (p *Pipeline) load(ctx context.Context, s pgdash.Store, cfg *pgdash.RunConfig) (*pgdash.LoadReport, error) {
	l := loader.NewLoaderWithFS(p.fsProvider, s, p.logger)
	return l.LoadDirectory(ctx, cfg.DatasetsDir)
}

func (p *Pipeline) report(ctx context.Context, s pgdash.Store, cfg *pgdash.RunConfig) (*pgdash.ReportSummary, error) {
	runner := query.NewRunner(s, p.observer(cfg))
	reporter := analytics.NewReporter(runner, p.charts, p.sheets, p.logger, cfg.ChartsDir, cfg.ExportsDir)
	return reporter.Run(ctx, analytics.Catalog(cfg.Report))
}

func (p *Pipeline) logSummary(r *RunResult) {
	if r.Load != nil {
		p.logger.Info("Loaded %d of %d file(s)", len(r.Load.Succeeded()), len(r.Load.Outcomes))
	}
	if r.Report != nil {
		p.logger.Info("Produced %d of %d artifact(s)", r.Report.Produced(), len(r.Report.Outcomes))
	}
}

func (p *Pipeline) defaultOpenStore(ctx context.Context, cfg *pgdash.RunConfig) (pgdash.Store, error) {
	switch cfg.Store {
	case pgdash.DialectPostgres:
		return OpenPostgresStore(ctx, cfg, db.NewConnector, p.logger)
	case pgdash.DialectSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory for %s: %w", cfg.SQLitePath, err)
			}
		}
		p.logger.Verbose("Opening SQLite store %s", cfg.SQLitePath)
		return store.OpenSQLite(ctx, cfg.SQLitePath, p.logger)
	default:
		return nil, fmt.Errorf("store %q: %w", cfg.Store, pgdash.ErrInvalidConfig)
	}
}

// OpenPostgresStore connects to the target database and wraps the pool in
// a store. The application name carries the run ID.
func OpenPostgresStore(ctx context.Context, cfg *pgdash.RunConfig, factory ConnectorFactory, logger pgdash.Logger) (pgdash.Store, error) {
	connConfig := cfg.Connection
	if connConfig.AppName == "" {
		connConfig.AppName = fmt.Sprintf("%s-%s", pgdash.DefaultAppName, cfg.RunID)
	}

	connector, err := factory(&connConfig, logger)
	if err != nil {
		return nil, err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		closeConnector(connector)
		return nil, err
	}
	logger.Verbose("Connected to %s:%d/%s as %s", connConfig.Host, connConfig.Port, connConfig.Database, connConfig.AppName)

	return &connectedStore{Store: store.NewPostgresStore(pool, logger), connector: connector}, nil
}

// connectedStore closes the connector together with the store.
type connectedStore struct {
	pgdash.Store
	connector pgdash.Connector
}

func (s *connectedStore) Close() error {
	err := s.Store.Close()
	closeConnector(s.connector)
	return err
}
