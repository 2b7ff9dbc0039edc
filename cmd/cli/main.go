// merlin-pricing CLI entry point
package main

import (
	"os"

	"merlin-pricing/cmd/cli/cmd"
	"merlin-pricing/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
