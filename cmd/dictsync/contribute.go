package main

import (
	"github.com/spf13/cobra"

	"github.com/amharic-dictionary/dictsync/internal/contribution"
)

func newContributeCommand() *cobra.Command {
	var c contribution.Contribution

	command := &cobra.Command{
		Use:   "contribute",
		Short: "Submit a new word definition for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			return app.orchestrator.Submit(cmd.Context(), c)
		},
	}

	command.Flags().StringVar(&c.AmharicWord, "word", "", "Amharic word (required)")
	command.Flags().StringVar(&c.Pronunciation, "pronunciation", "", "romanized pronunciation (required)")
	command.Flags().StringVar(&c.ArabicWord, "translation", "", "Arabic translation (required)")
	command.Flags().StringVar(&c.UsageExample, "usage", "", "usage example")
	command.Flags().StringVar(&c.Category, "category", "", "word category (required)")
	command.Flags().StringVar(&c.Level, "level", "", "difficulty level (required)")

	return command
}
