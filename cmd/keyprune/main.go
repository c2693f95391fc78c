// Command keyprune inspects expressions and predicates the way sorting-key
// index analysis sees them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/keyprune/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
