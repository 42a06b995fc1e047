package main

import (
	"fmt"
	"os"

	"github.com/ajiwo/askailimiter/internal/cli"
)

// Set via ldflags, e.g. -X main.version=1.0.0
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := cli.Execute(cli.VersionInfo{Version: version, Commit: commit, BuildDate: buildDate}); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
