package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

// Stamped by the release build:
//
//	go build -ldflags "-X github.com/vvka-141/pgdash/internal/cli.version=v1.2.0 ..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pgdash version and build details",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) { printVersionInfo() },
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString is the machine-parseable version line.
func versionString() string {
	return fmt.Sprintf("pgdash %s (%s, %s) %s/%s", version, commit, date, runtime.GOOS, runtime.GOARCH)
}

// printVersionInfo writes the version line to stdout so scripts can capture it;
// the Go toolchain and default store go to stderr.
func printVersionInfo() {
	fmt.Println(versionString())
	fmt.Fprintf(os.Stderr, "built with %s, default store %s\n", runtime.Version(), pgdash.DialectPostgres)
}
