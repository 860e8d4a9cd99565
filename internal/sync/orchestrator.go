package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/avast/retry-go"

	"github.com/amharic-dictionary/dictsync/internal/contribution"
	"github.com/amharic-dictionary/dictsync/internal/github"
	"github.com/amharic-dictionary/dictsync/internal/localstore"
)

const statsRetryAttempts = 3

// DrainResult summarizes one pass over the queued contributions.
type DrainResult struct {
	Attempted int
	Submitted int
	Failed    int
}

// Orchestrator owns the contribution submission state machine. Every
// submission is enqueued durably before any remote attempt, so a crash
// between the two can only duplicate a remote issue, never lose user input.
type Orchestrator struct {
	session *Session
	queue   *contribution.Queue
	api     RemoteAPI
	sink    NotificationSink
	logger  *slog.Logger

	pollOnce stdsync.Once
	pollDone chan struct{}
	pollWG   stdsync.WaitGroup
}

// NewOrchestrator wires the orchestrator's collaborators. Nothing else
// mutates the queue.
func NewOrchestrator(session *Session, queue *contribution.Queue, api RemoteAPI, sink NotificationSink, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		session:  session,
		queue:    queue,
		api:      api,
		sink:     sink,
		logger:   logger,
		pollDone: make(chan struct{}),
	}
}

// Submit takes a new contribution through intake. Validation and persistence
// failures are returned to the caller; remote failures are not, because the
// contribution is already safe in the queue.
func (o *Orchestrator) Submit(ctx context.Context, c contribution.Contribution) error {
	if err := c.Validate(); err != nil {
		var verr *contribution.ValidationError
		if errors.As(err, &verr) {
			o.sink.Error(fmt.Sprintf("Please fill in the %s field", verr.Field))
		}
		return err
	}

	c = c.Stamp(o.session.CurrentUser(ctx), time.Now())

	// Enqueue before any remote attempt. Durability is the guarantee here.
	if err := o.queue.Enqueue(ctx, c); err != nil {
		var perr *localstore.PersistenceError
		if errors.As(err, &perr) {
			o.sink.Error("Could not save the contribution locally")
		}
		return fmt.Errorf("queue.Enqueue() > %w", err)
	}

	if !o.session.Authenticated() {
		o.sink.Info("Contribution saved locally; it will be submitted once you connect")
		return nil
	}

	if err := o.submitRemote(ctx, c); err != nil {
		o.logger.Warn("immediate submission failed, contribution stays queued",
			"word", c.AmharicWord,
			"error", err,
		)
		o.sink.Warning("Contribution saved locally; it will be submitted when the connection recovers")
		return nil
	}

	o.sink.Success("Contribution submitted for review")
	return nil
}

// submitRemote creates the review issue and prunes the queued copy on success.
func (o *Orchestrator) submitRemote(ctx context.Context, c contribution.Contribution) error {
	title, body, labels, err := github.ContributionIssue(c)
	if err != nil {
		return fmt.Errorf("github.ContributionIssue() > %w", err)
	}
	if _, err := o.api.CreateIssue(ctx, title, body, labels); err != nil {
		return fmt.Errorf("api.CreateIssue() > %w", err)
	}
	if err := o.queue.Remove(ctx, c); err != nil {
		// The issue exists remotely; a later drain may duplicate it.
		o.logger.Error("failed to prune submitted contribution from the queue",
			"word", c.AmharicWord,
			"error", err,
		)
	}
	return nil
}

// OnConnectivityRestored is called by the host when the connection comes
// back. It drains the queue if the session is authenticated.
func (o *Orchestrator) OnConnectivityRestored(ctx context.Context) (DrainResult, error) {
	if !o.session.Authenticated() {
		return DrainResult{}, nil
	}
	return o.DrainQueue(ctx)
}

// DrainQueue attempts remote submission for every queued contribution, in
// insertion order, over a snapshot taken at invocation time. A per-item
// failure does not abort the pass; failed items stay queued for a later
// drain. Only confirmed-submitted items are pruned.
func (o *Orchestrator) DrainQueue(ctx context.Context) (DrainResult, error) {
	items, err := o.queue.Snapshot(ctx)
	if err != nil {
		return DrainResult{}, fmt.Errorf("queue.Snapshot() > %w", err)
	}
	if len(items) == 0 {
		return DrainResult{}, nil
	}

	result := DrainResult{Attempted: len(items)}
	for _, item := range items {
		if err := o.submitRemote(ctx, item); err != nil {
			o.logger.Warn("queued contribution not submitted, keeping it for the next drain",
				"word", item.AmharicWord,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Submitted++
	}

	switch {
	case result.Failed == 0:
		o.sink.Success(fmt.Sprintf("Synchronized %d queued contribution(s)", result.Submitted))
	default:
		o.sink.Warning(fmt.Sprintf("Synchronized %d of %d queued contribution(s); the rest stay queued", result.Submitted, result.Attempted))
	}
	return result, nil
}

// StartStatsPolling re-polls repository statistics on a fixed interval while
// the session is authenticated, forwarding each result to onStats. The poller
// runs until Close is called or ctx is cancelled.
func (o *Orchestrator) StartStatsPolling(ctx context.Context, interval time.Duration, onStats func(github.Stats)) {
	o.pollWG.Add(1)
	go func() {
		defer o.pollWG.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-o.pollDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !o.session.Authenticated() {
					continue
				}
				stats, err := o.fetchStats(ctx)
				if err != nil {
					o.logger.Warn("stats poll failed", "error", err)
					continue
				}
				onStats(stats)
			}
		}
	}()
}

func (o *Orchestrator) fetchStats(ctx context.Context) (github.Stats, error) {
	var stats github.Stats
	err := retry.Do(
		func() error {
			s, err := o.api.RepositoryStats(ctx)
			if err != nil {
				if !isRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			stats = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(statsRetryAttempts),
	)
	if err != nil {
		return github.Stats{}, fmt.Errorf("api.RepositoryStats() > %w", err)
	}
	return stats, nil
}

// isRetryable treats unreachable networks and server-side errors as
// transient. Client-side rejections will not improve on retry.
func isRetryable(err error) bool {
	var netErr *github.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == 429
	}
	return false
}

// Close stops the stats poller and waits for it to exit.
func (o *Orchestrator) Close() error {
	o.pollOnce.Do(func() {
		close(o.pollDone)
	})
	o.pollWG.Wait()
	return nil
}
