package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Manifest lists the critical assets precached at install time. The first
// asset is expected to be the application shell document.
type Manifest struct {
	Assets []string `yaml:"assets"`
}

// LoadManifest reads a YAML precache manifest.
func LoadManifest(path string) (Manifest, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("os.ReadFile() > %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return Manifest{}, fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	if len(m.Assets) == 0 {
		return Manifest{}, fmt.Errorf("manifest lists no assets")
	}
	return m, nil
}

// CommandType is a typed command from the host application.
type CommandType string

const (
	CommandSkipWaiting CommandType = "SKIP_WAITING"
	CommandGetVersion  CommandType = "GET_VERSION"
	CommandClearCache  CommandType = "CLEAR_CACHE"
)

// Command is a host message, with an optional reply channel.
type Command struct {
	Type  CommandType
	Reply chan<- CommandReply
}

// CommandReply answers GET_VERSION and CLEAR_CACHE commands.
type CommandReply struct {
	Version string
	Success bool
}

// Notification is a user-visible notification with named actions.
type Notification struct {
	Title   string
	Body    string
	Actions []NotificationAction
}

// NotificationAction is one button on a notification.
type NotificationAction struct {
	ID    string
	Title string
}

// Notifier displays notifications to the user. The host provides it.
type Notifier interface {
	Show(n Notification) error
}

// Lifecycle installs and activates cache generations, handles host commands,
// and pushes update notifications.
type Lifecycle struct {
	store      *Store
	generation string
	transport  http.RoundTripper
	notifier   Notifier
	logger     *slog.Logger

	skipWaiting atomic.Bool
}

// LifecycleOption customizes a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithLifecycleTransport sets the transport used for install fetches.
func WithLifecycleTransport(rt http.RoundTripper) LifecycleOption {
	return func(l *Lifecycle) {
		l.transport = rt
	}
}

// WithNotifier sets the notification target.
func WithNotifier(n Notifier) LifecycleOption {
	return func(l *Lifecycle) {
		l.notifier = n
	}
}

// WithLifecycleLogger sets the logger.
func WithLifecycleLogger(logger *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		l.logger = logger
	}
}

// NewLifecycle creates a Lifecycle for the given generation.
func NewLifecycle(store *Store, generation string, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		store:      store,
		generation: generation,
		transport:  http.DefaultTransport,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Generation returns the current generation name.
func (l *Lifecycle) Generation() string {
	return l.generation
}

// Install precaches every manifest asset into the current generation.
// Install is atomic: assets are fetched into a staging generation and
// promoted only when every fetch succeeded. Any failure leaves the store
// without a partial cache.
func (l *Lifecycle) Install(ctx context.Context, m Manifest) error {
	staging := l.generation + ".staging"
	defer func() {
		_ = l.store.Delete(staging)
	}()

	for _, asset := range m.Assets {
		if err := l.precache(ctx, staging, asset); err != nil {
			return fmt.Errorf("precache %s > %w", asset, err)
		}
	}

	if err := l.store.Promote(staging, l.generation); err != nil {
		return fmt.Errorf("store.Promote() > %w", err)
	}
	l.logger.Info("install complete", "generation", l.generation, "assets", len(m.Assets))

	if l.skipWaiting.Load() {
		if _, err := l.Activate(ctx); err != nil {
			return fmt.Errorf("l.Activate() > %w", err)
		}
	}
	return nil
}

func (l *Lifecycle) precache(ctx context.Context, staging, asset string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext() > %w", err)
	}
	resp, err := l.transport.RoundTrip(req)
	if err != nil {
		return fmt.Errorf("transport.RoundTrip() > %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("io.ReadAll() > %w", err)
	}

	return l.store.Put(staging, Entry{
		URL:        asset,
		Method:     http.MethodGet,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	})
}

// Activate deletes every named cache whose name differs from the current
// generation and reports which ones were evicted. The new generation takes
// over immediately.
func (l *Lifecycle) Activate(ctx context.Context) ([]string, error) {
	generations, err := l.store.Generations()
	if err != nil {
		return nil, fmt.Errorf("store.Generations() > %w", err)
	}

	var deleted []string
	for _, name := range generations {
		if name == l.generation {
			continue
		}
		if err := l.store.Delete(name); err != nil {
			return deleted, fmt.Errorf("store.Delete(%s) > %w", name, err)
		}
		l.logger.Info("deleted stale cache", "generation", name)
		deleted = append(deleted, name)
	}

	l.logger.Info("activation complete", "generation", l.generation)
	return deleted, nil
}

// HandleCommand processes a typed host command.
func (l *Lifecycle) HandleCommand(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandSkipWaiting:
		l.skipWaiting.Store(true)
		return nil
	case CommandGetVersion:
		if cmd.Reply != nil {
			cmd.Reply <- CommandReply{Version: l.generation, Success: true}
		}
		return nil
	case CommandClearCache:
		if err := l.store.Delete(l.generation); err != nil {
			if cmd.Reply != nil {
				cmd.Reply <- CommandReply{Success: false}
			}
			return fmt.Errorf("store.Delete() > %w", err)
		}
		l.logger.Info("cache cleared", "generation", l.generation)
		if cmd.Reply != nil {
			cmd.Reply <- CommandReply{Success: true}
		}
		return nil
	}
	return fmt.Errorf("unknown command: %s", cmd.Type)
}

// Notify pushes an update notification with the default actions.
func (l *Lifecycle) Notify(title, body string) error {
	if l.notifier == nil {
		return nil
	}
	err := l.notifier.Show(Notification{
		Title: title,
		Body:  body,
		Actions: []NotificationAction{
			{ID: "explore", Title: "Open"},
			{ID: "close", Title: "Dismiss"},
		},
	})
	if err != nil {
		return fmt.Errorf("notifier.Show() > %w", err)
	}
	return nil
}
