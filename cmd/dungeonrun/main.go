package main

import (
	"fmt"
	"os"

	"github.com/mwantia/dungeonrun/cmd/dungeonrun/cli"
	"github.com/mwantia/dungeonrun/cmd/dungeonrun/cli/client"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())

	root.AddCommand(client.NewCharacterCommand())
	root.AddCommand(client.NewRunCommand())
	root.AddCommand(client.NewStatsCommand())
	root.AddCommand(client.NewExportCommand())
	root.AddCommand(client.NewCatalogCommand())
	root.AddCommand(client.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
