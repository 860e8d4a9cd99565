package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amharic-dictionary/dictsync/internal/github"
)

func newStatsCommand() *cobra.Command {
	var watch bool

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show repository statistics for the dictionary",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			if app.session.HasToken() {
				if err := app.session.Authenticate(cmd.Context(), ""); err != nil {
					return fmt.Errorf("session.Authenticate() > %w", err)
				}
			}

			stats, err := app.client.RepositoryStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("client.RepositoryStats() > %w", err)
			}
			printStats(stats)

			if !watch {
				return nil
			}

			fmt.Printf("Refreshing every %s. Press Ctrl+C to stop.\n", app.cfg.Sync.PollInterval)
			app.orchestrator.StartStatsPolling(cmd.Context(), app.cfg.Sync.PollInterval, printStats)

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupt)

			select {
			case <-interrupt:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}

	command.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")

	return command
}

func printStats(stats github.Stats) {
	fmt.Printf("Stars: %d  Forks: %d  Open issues: %d  Contributors: %d\n",
		stats.Stars, stats.Forks, stats.OpenIssues, stats.Contributors)
	if !stats.LastCommit.IsZero() {
		fmt.Printf("Last commit: %s\n", stats.LastCommit.Format(time.RFC3339))
	}
}
