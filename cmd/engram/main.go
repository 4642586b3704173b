package main

import (
	"fmt"
	"os"

	"github.com/lazypower/engram/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintf(os.Stderr, "engram: %s\n", msg)
		}
		os.Exit(cli.ExitCode(err))
	}
}
