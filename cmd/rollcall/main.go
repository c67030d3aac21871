// Command rollcall tracks attendance for small study groups.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/rollcall/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Cobra argument and flag errors are not ExitErrors and have not been printed.
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
