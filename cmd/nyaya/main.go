// nyaya: plain-language explanations of Indian statutes.
// Runs the web UI (serve) or answers a single question in the terminal (ask).
package main

import (
	"fmt"
	"os"

	"github.com/teslashibe/go-nyaya/cmd/nyaya/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.ErrorPanel(err.Error()))
		os.Exit(1)
	}
}
