// Command observer is the offline observation plane for automated pipeline
// runs: it records run outcomes, computes metrics, generates verdicts, and
// manages parameter change proposals.
package main

import (
	"fmt"
	"os"

	"github.com/obsplane/observer/internal/cli"
)

func main() {
	if err := cli.Execute(os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "observer: %v\n", err)
		os.Exit(1)
	}
}
