package main

import (
	"os"

	"github.com/cardpress/cardpress/internal/cli"
	"github.com/cardpress/cardpress/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
