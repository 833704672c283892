// Command promisematchers evaluates promise expectations declared
// in YAML scenario files and reports the outcome.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitUsageOrSetup = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errScenariosFailed):
		return ExitFailure
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitUsageOrSetup
	}
}
