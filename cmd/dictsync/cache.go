package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amharic-dictionary/dictsync/internal/cache"
)

func newCacheCommand() *cobra.Command {
	cacheCommand := &cobra.Command{
		Use:   "cache",
		Short: "Manage offline cache generations",
	}

	cacheCommand.AddCommand(newCacheInstallCommand())
	cacheCommand.AddCommand(newCacheActivateCommand())
	cacheCommand.AddCommand(newCacheClearCommand())
	cacheCommand.AddCommand(newCacheVersionCommand())

	return cacheCommand
}

func newCacheInstallCommand() *cobra.Command {
	var activate bool

	command := &cobra.Command{
		Use:   "install",
		Short: "Precache the critical assets into a fresh generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycle, cfg, err := newCacheLifecycle()
			if err != nil {
				return err
			}

			if activate {
				if err := lifecycle.HandleCommand(cmd.Context(), cache.Command{Type: cache.CommandSkipWaiting}); err != nil {
					return fmt.Errorf("lifecycle.HandleCommand() > %w", err)
				}
			}

			manifest, err := cache.LoadManifest(cfg.Cache.ManifestPath)
			if err != nil {
				return fmt.Errorf("cache.LoadManifest() > %w", err)
			}
			if err := lifecycle.Install(cmd.Context(), manifest); err != nil {
				return fmt.Errorf("lifecycle.Install() > %w", err)
			}

			fmt.Printf("Installed %d asset(s) into %s.\n", len(manifest.Assets), lifecycle.Generation())
			if activate {
				return lifecycle.Notify("Dictionary updated", "A new offline version is ready")
			}
			fmt.Println("Run 'dictsync cache activate' to switch over.")
			return nil
		},
	}

	command.Flags().BoolVar(&activate, "activate", false, "activate immediately after installing")

	return command
}

func newCacheActivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Delete every stale cache generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycle, _, err := newCacheLifecycle()
			if err != nil {
				return err
			}

			deleted, err := lifecycle.Activate(cmd.Context())
			if err != nil {
				return fmt.Errorf("lifecycle.Activate() > %w", err)
			}
			if len(deleted) == 0 {
				fmt.Println("No stale generations to delete.")
				return nil
			}
			for _, name := range deleted {
				fmt.Printf("Deleted %s.\n", name)
			}
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the current cache generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycle, _, err := newCacheLifecycle()
			if err != nil {
				return err
			}

			reply := make(chan cache.CommandReply, 1)
			if err := lifecycle.HandleCommand(cmd.Context(), cache.Command{Type: cache.CommandClearCache, Reply: reply}); err != nil {
				return fmt.Errorf("lifecycle.HandleCommand() > %w", err)
			}
			if r := <-reply; !r.Success {
				return fmt.Errorf("cache clear was not acknowledged")
			}
			fmt.Printf("Cleared %s.\n", lifecycle.Generation())
			return nil
		},
	}
}

func newCacheVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current cache generation name",
		RunE: func(cmd *cobra.Command, args []string) error {
			lifecycle, _, err := newCacheLifecycle()
			if err != nil {
				return err
			}

			reply := make(chan cache.CommandReply, 1)
			if err := lifecycle.HandleCommand(cmd.Context(), cache.Command{Type: cache.CommandGetVersion, Reply: reply}); err != nil {
				return fmt.Errorf("lifecycle.HandleCommand() > %w", err)
			}
			fmt.Println((<-reply).Version)
			return nil
		},
	}
}
