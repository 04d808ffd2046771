package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgdash/internal/logging"
	"github.com/vvka-141/pgdash/internal/services"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

type stage int

const (
	stageAll stage = iota
	stageBootstrap
	stageLoad
	stageReport
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap the database, load datasets and write reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, stageAll)
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the target database if it does not exist",
	Long: `Connects to the maintenance database (default "postgres"), checks
pg_database for the target and creates it when missing. Does nothing
when the store is SQLite.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, stageBootstrap)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import every CSV file in the datasets directory",
	Long: `Each *.csv file replaces the table named after it (lower-cased stem).
Files that cannot be parsed or written are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, stageLoad)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the aggregation queries and write charts and the spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, stageReport)
	},
}

func init() {
	rootCmd.AddCommand(runCmd, bootstrapCmd, loadCmd, reportCmd)
}

// runStage builds the run configuration and executes one stage (or all).
func runStage(cmd *cobra.Command, s stage) error {
	verbose := getVerboseFlag(cmd)

	cfg, err := buildRunConfig(".", verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)
	logger.Info("pgdash run %s", cfg.RunID)
	if verbose {
		logRunConfig(logger, cfg)
	}

	ctx, cancel := runContext(cmd.Context(), cfg.Timeout)
	defer cancel()

	return executeStage(ctx, services.NewPipeline(logger), cfg, s)
}

func executeStage(ctx context.Context, p *services.Pipeline, cfg *pgdash.RunConfig, s stage) error {
	var err error
	switch s {
	case stageBootstrap:
		_, err = p.Bootstrap(ctx, cfg)
	case stageLoad:
		_, err = p.Load(ctx, cfg)
	case stageReport:
		_, err = p.Report(ctx, cfg)
	default:
		_, err = p.Run(ctx, cfg)
	}
	return err
}

// runContext is cancelled on SIGINT/SIGTERM and, when timeout is positive,
// after timeout.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func logRunConfig(logger pgdash.Logger, cfg *pgdash.RunConfig) {
	logger.Verbose("Store: %s", cfg.Store)
	if cfg.Store == pgdash.DialectPostgres {
		logger.Verbose("Connection resolved:")
		logger.Verbose("  Host: %s", cfg.Connection.Host)
		logger.Verbose("  Port: %d", cfg.Connection.Port)
		logger.Verbose("  User: %s", cfg.Connection.Username)
		logger.Verbose("  Target Database: %s", cfg.Connection.Database)
		logger.Verbose("  Maintenance Database: %s", cfg.MaintenanceDatabase)
		logger.Verbose("  SSL Mode: %s", cfg.Connection.SSLMode)
		logger.Verbose("  Auth Method: %s", cfg.Connection.AuthMethod)
	} else {
		logger.Verbose("  SQLite file: %s", cfg.SQLitePath)
	}
	logger.Verbose("Datasets: %s", cfg.DatasetsDir)
	logger.Verbose("Charts: %s", cfg.ChartsDir)
	logger.Verbose("Exports: %s", cfg.ExportsDir)
	if cfg.Timeout > 0 {
		logger.Verbose("Timeout: %s", cfg.Timeout)
	}
}
