package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score submission and retrieval commands",
	}

	cmd.AddCommand(newScoreSubmitCmd())
	cmd.AddCommand(newScoreGetCmd())

	return cmd
}

func newScoreSubmitCmd() *cobra.Command {
	var file string
	var uid int64

	cmd := &cobra.Command{
		Use:   "submit <game>",
		Short: "Submit a replay document",
		Long: `Submit a replay document to a game's score ledger on behalf of
the account given with --uid.

The replay is read from the file given with --file, or from stdin
when --file is omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if file != "" {
				raw, err = os.ReadFile(file)
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read replay: %w", err)
			}

			var result SubmitResult
			path := fmt.Sprintf("/api/v1/games/%s/scores?uid=%d", args[0], uid)
			if err := client.Post(path, raw, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Replay file (default: stdin)")
	cmd.Flags().Int64Var(&uid, "uid", 0, "Submitting account id (required)")
	_ = cmd.MarkFlagRequired("uid")

	return cmd
}

func newScoreGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <game> <id>",
		Short: "Fetch a recorded score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Score

			path := fmt.Sprintf("/api/v1/games/%s/scores/%s", args[0], args[1])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaderboardCmd() *cobra.Command {
	var level int64

	cmd := &cobra.Command{
		Use:   "leaderboard <game>",
		Short: "Fetch a game's leaderboard for a level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			path := fmt.Sprintf("/api/v1/games/%s/leaderboard?level=%d", args[0], level)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&level, "level", 0, "Level id (required)")
	_ = cmd.MarkFlagRequired("level")

	return cmd
}
