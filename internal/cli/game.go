package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game catalog commands",
	}

	cmd.AddCommand(newGameRegisterCmd())
	cmd.AddCommand(newGameListCmd())

	return cmd
}

func newGameRegisterCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a new game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": args[0]}
			if displayName != "" {
				req["display_name"] = displayName
			}
			var result Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable name")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
