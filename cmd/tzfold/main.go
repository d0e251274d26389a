package main

import (
	"fmt"
	"os"

	"github.com/tzfold/tzfold/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own diagnostics; this is the terse exit
		// reason for scripts reading stderr.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
