// Package main is the entry point for the nbctl CLI.
//
// nbctl provisions virtual machines and maintains interfaces, cables,
// services and naming in a NetBox inventory. VM creation runs as a
// transaction: every record written is removed again when a later step
// fails.
//
// For detailed usage information, run:
//
//	nbctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/nbctl/cmd/nbctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
