// Command jsc compiles ESTree programs into goto-structured C++.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/jsc/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// Commands print their own failures; cobra's (unknown flags, bad
	// --format) still need reporting.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(cli.ExitCommandError)
}
