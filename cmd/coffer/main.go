// Package main is the entry point for the coffer CLI.
package main

import (
	"os"

	"github.com/thoreinstein/coffer/cmd/coffer/commands"
)

func main() {
	os.Exit(commands.Execute())
}
