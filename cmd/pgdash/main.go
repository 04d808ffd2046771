// Command pgdash loads the Olist CSV datasets into a relational store and
// renders the order report.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/pgdash/internal/cli"
	"github.com/vvka-141/pgdash/pkg/pgdash"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. A panic anywhere in a stage is reported
// with its stack and mapped to ExitPanic.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "pgdash: internal error: %v\n%s\n", r, debug.Stack())
			code = pgdash.ExitPanic
		}
	}()

	// lets tests exercise the crash path end to end
	if os.Getenv("PGDASH_TEST_PANIC") == "1" {
		panic("PGDASH_TEST_PANIC is set")
	}

	if err := cli.Execute(); err != nil {
		return pgdash.ExitCodeForError(err)
	}
	return pgdash.ExitSuccess
}
