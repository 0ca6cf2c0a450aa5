// Package main implements the decisionlog CLI tool.
package main

import (
	"os"

	"github.com/roach88/decisionlog/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	return cli.Execute(os.Args[1:], os.Stdout, os.Stderr)
}
