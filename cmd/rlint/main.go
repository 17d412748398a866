// Command rlint is the CLI front end for the rlint static analyzer: a
// state-machine, scope-tracking linter for an R-like scripting
// language.
package main

import (
	"github.com/aledsdavies/rlint/cmd/rlint/cmd"
)

func main() {
	cmd.Execute()
}
