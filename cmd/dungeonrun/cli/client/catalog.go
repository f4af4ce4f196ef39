package client

import (
	"fmt"
	"text/tabwriter"

	"github.com/mwantia/dungeonrun/internal/catalog"
	"github.com/spf13/cobra"

	config "github.com/mwantia/dungeonrun/internal/config/tracker"
)

func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the dungeon and drop catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List catalog dungeons and drops",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadTrackerConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			cat := catalog.FromConfig(cfg.Catalog)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "DUNGEON\tCOST")
			for _, d := range cat.Dungeons() {
				fmt.Fprintf(w, "%s\t%s\n", d.Name, formatAmount(d.Cost))
			}

			fmt.Fprintln(w, "\nDROPS")
			for _, d := range cat.Drops() {
				fmt.Fprintln(w, d)
			}

			return w.Flush()
		},
	})

	return cmd
}
