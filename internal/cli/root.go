package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgdash",
	Short: "Load CSV datasets into a relational store and report on them",
	Long: `pgdash imports every *.csv file in the datasets directory into PostgreSQL
(or SQLite), one table per file, then runs a fixed set of aggregation
queries over the Olist orders data and writes charts, an interactive
chart and a spreadsheet report.

Without a subcommand pgdash runs the whole pipeline: bootstrap, load, report.

Configuration comes from the environment (a .env file is read first) and
an optional pgdash.yaml in the working directory:
  PG_HOST, PG_PORT, PG_DB, PG_USER, PG_PASS   connection (PGHOST etc. also honoured)
  PGDASH_CONNECTION_STRING, DATABASE_URL      full connection string
  PGDASH_AUTH_METHOD                          standard | aws | azure | google
  PGDASH_STORE                                postgres | sqlite
  PGDASH_SQLITE_PATH                          SQLite database file

Exit Codes:
  0  - Success (individual files or reports may still have failed)
  1  - General error
  2  - CLI usage error
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Store connection failed
  12 - Datasets directory missing or unreadable`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStage(cmd, stageAll)
	},
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
