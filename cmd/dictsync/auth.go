package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	authCommand := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GitHub credential",
	}

	authCommand.AddCommand(newAuthLoginCommand())
	authCommand.AddCommand(newAuthLogoutCommand())

	return authCommand
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "Validate and store a GitHub token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			token := app.cfg.GitHub.Token
			if len(args) > 0 {
				token = args[0]
			}
			if token == "" && !app.session.HasToken() {
				return fmt.Errorf("no token given; pass it as an argument or set GITHUB_TOKEN")
			}

			if err := app.session.Authenticate(cmd.Context(), token); err != nil {
				app.sink.Error("Token validation failed")
				return fmt.Errorf("session.Authenticate() > %w", err)
			}
			app.sink.Success(fmt.Sprintf("Logged in as %s", app.session.CurrentUser(cmd.Context())))
			return nil
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored GitHub token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			if err := app.session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("session.Logout() > %w", err)
			}
			app.sink.Success("Logged out")
			return nil
		},
	}
}
