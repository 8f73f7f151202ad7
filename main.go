package main

import (
	"os"

	"github.com/sadopc/weekly/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
