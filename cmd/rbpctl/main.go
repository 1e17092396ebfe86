// Command rbpctl is a debug/dispatch companion for a single RBP
// target: resolve address-table paths, issue one-off reads and
// writes, and render wire traffic with the Inspector.
package main

import (
	"os"

	"github.com/ast0815/ipbus-software/cmd/rbpctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
