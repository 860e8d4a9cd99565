package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline contribution queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			if !app.session.HasToken() {
				app.sink.Info("No stored token. Run 'dictsync auth login' first.")
				return nil
			}
			// Revalidate the stored token before draining.
			if err := app.session.Authenticate(cmd.Context(), ""); err != nil {
				return fmt.Errorf("session.Authenticate() > %w", err)
			}

			result, err := app.orchestrator.OnConnectivityRestored(cmd.Context())
			if err != nil {
				return fmt.Errorf("orchestrator.OnConnectivityRestored() > %w", err)
			}
			if result.Attempted == 0 {
				fmt.Println("Nothing to synchronize.")
				return nil
			}
			fmt.Printf("Attempted %d, submitted %d, still queued %d.\n",
				result.Attempted, result.Submitted, result.Failed)
			return nil
		},
	}
}
