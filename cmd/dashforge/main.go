// Package main provides the dashforge CLI.
package main

import (
	"os"

	"github.com/fluxwms/dashforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
