package main

import (
	"fmt"
	"strconv"

	"github.com/matthewjhunter/jadwalbola/internal/output"
	"github.com/spf13/cobra"
)

type scoreFlags struct {
	home int
	away int
	note string
}

func (s *scoreFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.home, "home", 0, "predicted home score")
	cmd.Flags().IntVar(&s.away, "away", 0, "predicted away score")
	cmd.Flags().StringVarP(&s.note, "note", "n", "", "free-text note")
}

func predictionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "predictions",
		Aliases: []string{"pred"},
		Short:   "Manage match predictions",
	}
	cmd.AddCommand(predictionsAddCmd())
	cmd.AddCommand(predictionsListCmd())
	cmd.AddCommand(predictionsGetCmd())
	cmd.AddCommand(predictionsUpdateCmd())
	cmd.AddCommand(predictionsDeleteCmd())
	cmd.AddCommand(predictionsSaveCmd())
	return cmd
}

func predictionsAddCmd() *cobra.Command {
	var s scoreFlags
	cmd := &cobra.Command{
		Use:   "add <match-id>",
		Short: "Record a new prediction",
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

			id, err := engine.AddPrediction(cmd.Context(), args[0], s.home, s.away, s.note)
			if err != nil {
				return fmt.Errorf("failed to add prediction: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "added", ID: id, Target: args[0]})
		},
	}
	s.register(cmd)
	return cmd
}

func predictionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List predictions, newest first",
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

			return formatter.OutputPredictions(engine.ListPredictions(cmd.Context()))
		},
	}
}

func predictionsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show the prediction for a match",
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

			p, err := engine.GetPredictionByMatchID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get prediction: %w", err)
			}
			return formatter.OutputPrediction(args[0], p)
		},
	}
}

func predictionsUpdateCmd() *cobra.Command {
	var s scoreFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the scores and note of a prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.UpdatePrediction(cmd.Context(), id, s.home, s.away, s.note); err != nil {
				return fmt.Errorf("failed to update prediction: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "updated", ID: id})
		},
	}
	s.register(cmd)
	return cmd
}

func predictionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			if err := engine.DeletePrediction(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete prediction: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "deleted", ID: id})
		},
	}
}

func predictionsSaveCmd() *cobra.Command {
	var s scoreFlags
	cmd := &cobra.Command{
		Use:   "save <match-id>",
		Short: "Update the match's prediction, or add one if there is none",
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

			id, err := engine.SavePrediction(cmd.Context(), args[0], s.home, s.away, s.note)
			if err != nil {
				return fmt.Errorf("failed to save prediction: %w", err)
			}
			return formatter.OutputWriteResult(&output.WriteResult{Action: "saved", ID: id, Target: args[0]})
		},
	}
	s.register(cmd)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
