package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQueueCommand() *cobra.Command {
	queueCommand := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the offline contribution queue",
	}

	queueCommand.AddCommand(newQueueListCommand())
	queueCommand.AddCommand(newQueueClearCommand())

	return queueCommand
}

func newQueueListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every queued contribution in insertion order",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			items, err := app.queue.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("queue.Snapshot() > %w", err)
			}
			if len(items) == 0 {
				fmt.Println("The queue is empty.")
				return nil
			}

			for i, item := range items {
				fmt.Printf("%d. %s (%s) -> %s [%s/%s] by %s at %s\n",
					i+1,
					item.AmharicWord,
					item.Pronunciation,
					item.ArabicWord,
					item.Category,
					item.Level,
					item.Contributor,
					item.Timestamp,
				)
			}
			return nil
		},
	}
}

func newQueueClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every queued contribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			count, err := app.queue.Len(cmd.Context())
			if err != nil {
				return fmt.Errorf("queue.Len() > %w", err)
			}
			if err := app.queue.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("queue.Clear() > %w", err)
			}
			fmt.Printf("Discarded %d queued contribution(s).\n", count)
			return nil
		},
	}
}
