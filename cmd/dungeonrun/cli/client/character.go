package client

import (
	"context"
	"fmt"

	"github.com/mwantia/dungeonrun/internal/tracker"
	"github.com/mwantia/dungeonrun/internal/view"
	"github.com/spf13/cobra"
)

func NewCharacterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "char",
		Aliases: []string{"character"},
		Short:   "Manage characters",
		Long:    "List, add, remove and select the characters runs are recorded for.",
	}

	cmd.AddCommand(newCharacterListCommand())
	cmd.AddCommand(newCharacterAddCommand())
	cmd.AddCommand(newCharacterRemoveCommand())
	cmd.AddCommand(newCharacterSelectCommand())

	return cmd
}

func newCharacterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				out := cmd.OutOrStdout()
				for _, name := range t.Characters() {
					marker := " "
					if name == t.Selected() {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, name)
				}
				if t.Selected() == view.AllCharacters {
					fmt.Fprintln(out, "* All Characters")
				}
				return nil
			})
		},
	}
}

func newCharacterAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add and select a character",
		Long:  fmt.Sprintf("Add a new character (at most %d characters long) and select it.", tracker.MaxCharacterName),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				added, err := t.AddCharacter(ctx, args[0])
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "Character '%s' not added\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added and selected '%s'\n", t.Selected())
				return nil
			})
		},
	}
}

func newCharacterRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a character",
		Long:  "Remove a character from the list. Its runs are kept but can only be seen under all characters.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				removed, err := t.RemoveCharacter(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Character '%s' not removed\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed '%s', selected '%s'\n", args[0], t.Selected())
				return nil
			})
		},
	}
}

func newCharacterSelectCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "select [name]",
		Short: "Select the active character",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := view.AllCharacters
			if !all {
				if len(args) == 0 {
					return fmt.Errorf("a character name or --all is required")
				}
				name = args[0]
			}

			return withTracker(cmd, func(ctx context.Context, t *tracker.Tracker) error {
				return t.SelectCharacter(ctx, name)
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "select all characters")

	return cmd
}
