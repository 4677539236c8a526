package main

import (
	"fmt"

	"github.com/matthewjhunter/jadwalbola/internal/output"
	"github.com/spf13/cobra"
)

func favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite teams",
	}
	cmd.AddCommand(favoritesAddCmd())
	cmd.AddCommand(favoritesListCmd())
	cmd.AddCommand(favoritesCheckCmd())
	cmd.AddCommand(favoritesRemoveCmd())
	cmd.AddCommand(favoritesToggleCmd())
	return cmd
}

func favoritesAddCmd() *cobra.Command {
	var logoURL string
	cmd := &cobra.Command{
		Use:   "add <team-id> <team-name>",
		Short: "Mark a team as favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			id, err := engine.AddFavorite(cmd.Context(), args[0], args[1], logoURL)
			if err != nil {
				return fmt.Errorf("failed to add favorite: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "added", ID: id, Target: args[1]})
		},
	}
	cmd.Flags().StringVar(&logoURL, "logo", "", "team crest URL")
	return cmd
}

func favoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorite teams by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			return formatter.OutputFavorites(engine.ListFavorites(cmd.Context()))
		},
	}
}

func favoritesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <team-id>",
		Short: "Report whether a team is a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			fav, err := engine.IsFavorite(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to check favorite: %w", err)
			}
			return formatter.OutputFavoriteStatus(args[0], fav)
		},
	}
}

func favoritesRemoveCmd() *cobra.Command {
	var byID bool
	cmd := &cobra.Command{
		Use:   "remove <team-id>",
		Short: "Remove every favorite row for a team (or one row with --id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if byID {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := engine.RemoveFavoriteByID(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to remove favorite: %w", err)
				}
				return formatter.OutputWriteResult(&output.WriteResult{Action: "removed", ID: id})
			}

			if err := engine.RemoveFavoriteByTeamID(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to remove favorite: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "removed", Target: args[0]})
		},
	}
	cmd.Flags().BoolVar(&byID, "id", false, "treat the argument as a favorite row id")
	return cmd
}

func favoritesToggleCmd() *cobra.Command {
	var logoURL string
	cmd := &cobra.Command{
		Use:   "toggle <team-id> [team-name]",
		Short: "Add the team if it is not a favorite, remove it otherwise",
		Long:  "Add the team if it is not a favorite, remove it otherwise. The team name is required only when adding.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			var teamName string
			if len(args) > 1 {
				teamName = args[1]
			}
			fav, err := engine.ToggleFavorite(cmd.Context(), args[0], teamName, logoURL)
			if err != nil {
				return fmt.Errorf("failed to toggle favorite: %w", err)
			}
			return formatter.OutputFavoriteStatus(args[0], fav)
		},
	}
	cmd.Flags().StringVar(&logoURL, "logo", "", "team crest URL")
	return cmd
}
