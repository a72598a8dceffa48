// Package main is the entry point for the typesmith binary with the sample
// declaration catalog registered.
package main

import (
	"fmt"
	"os"

	"github.com/artpar/typesmith/core/channel/cli"
	"github.com/artpar/typesmith/core/registry"
	"github.com/artpar/typesmith/internal/catalog"
)

var (
	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	reg := registry.New()
	if err := catalog.Register(reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}

	root := cli.NewRootCommand(reg, cli.WithBuildInfo(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	}))
	os.Exit(cli.Execute(root))
}
