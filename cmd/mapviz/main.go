package main

import (
	"os"

	"github.com/jengzang/opportunity-map-go/internal/cli"
)

// Build-time variables injected via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
