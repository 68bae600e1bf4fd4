package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountGetCmd())
	cmd.AddCommand(newAccountModifyCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var user, nick, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"nickname": nick,
				"email":    email,
			}
			if pass != "" {
				req["password"] = pass
			}
			var result Account

			if err := client.Post("/api/v1/accounts", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&nick, "nick", "", "Nickname (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (optional)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("nick")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify account credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result LoginResult

			if err := client.Post("/api/v1/accounts/login", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch an account by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Get("/api/v1/accounts/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	return cmd
}

func newAccountModifyCmd() *cobra.Command {
	var email, pass, status string

	cmd := &cobra.Command{
		Use:   "modify <id>",
		Short: "Modify an account's email, password or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if email != "" {
				req["email"] = email
			}
			if pass != "" {
				req["password"] = pass
			}
			if status != "" {
				req["status"] = status
			}
			if len(req) == 0 {
				return fmt.Errorf("at least one of --email, --pass or --status is required")
			}

			var result Account
			if err := client.Patch("/api/v1/accounts/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&pass, "pass", "", "New password")
	cmd.Flags().StringVar(&status, "status", "", "New status (active, unverified, banned, disabled)")

	return cmd
}
