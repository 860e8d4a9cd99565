package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amharic-dictionary/dictsync/internal/cache"
	"github.com/amharic-dictionary/dictsync/internal/cli"
	"github.com/amharic-dictionary/dictsync/internal/config"
	"github.com/amharic-dictionary/dictsync/internal/contribution"
	"github.com/amharic-dictionary/dictsync/internal/github"
	"github.com/amharic-dictionary/dictsync/internal/localstore"
	"github.com/amharic-dictionary/dictsync/internal/sync"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// app holds the wired collaborators every command shares.
type app struct {
	cfg          *config.Config
	store        *localstore.Store
	client       *github.Client
	session      *sync.Session
	queue        *contribution.Queue
	sink         *cli.ColorSink
	orchestrator *sync.Orchestrator
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("localstore.Open() > %w", err)
	}

	cacheStore := cache.NewStore(cfg.Cache.Directory)
	generation := cache.GenerationName(cfg.Cache.Version)
	proxy := cache.NewProxy(cacheStore, generation, cfg.Cache.ShellURL)

	client := github.NewClient(
		cfg.GitHub.Owner,
		cfg.GitHub.Repository,
		github.WithBaseURL(cfg.GitHub.APIBaseURL),
		github.WithTransport(proxy),
	)

	session, err := sync.NewSession(ctx, store, client)
	if err != nil {
		closeQuietly(store, client)
		return nil, fmt.Errorf("sync.NewSession() > %w", err)
	}

	queue := contribution.NewQueue(store)
	sink := cli.NewColorSink(nil)
	orchestrator := sync.NewOrchestrator(session, queue, client, sink, slog.Default())

	return &app{
		cfg:          cfg,
		store:        store,
		client:       client,
		session:      session,
		queue:        queue,
		sink:         sink,
		orchestrator: orchestrator,
	}, nil
}

func (a *app) Close() error {
	err := a.orchestrator.Close()
	closeQuietly(a.store, a.client)
	return err
}

func closeQuietly(closers ...interface{ Close() error }) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// newCacheLifecycle builds the lifecycle manager without the sync stack.
func newCacheLifecycle() (*cache.Lifecycle, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store := cache.NewStore(cfg.Cache.Directory)
	lifecycle := cache.NewLifecycle(
		store,
		cache.GenerationName(cfg.Cache.Version),
		cache.WithNotifier(cli.NewConsoleNotifier(nil)),
	)
	return lifecycle, cfg, nil
}
