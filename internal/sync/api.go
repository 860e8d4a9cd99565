// Package sync decides whether user submissions go straight to the remote
// issue tracker or wait in the durable offline queue, and drains that queue
// when connectivity and credentials allow.
package sync

import (
	"context"

	"github.com/amharic-dictionary/dictsync/internal/github"
)

// RemoteAPI is the remote issue-tracker surface the orchestrator needs.
// *github.Client implements it.
type RemoteAPI interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (github.Issue, error)
	GetAuthenticatedUser(ctx context.Context) (github.User, error)
	RepositoryStats(ctx context.Context) (github.Stats, error)
	SetToken(token string)
}

// NotificationSink receives user-visible outcome notifications.
// The host UI provides the implementation; the orchestrator only ever calls
// these well-typed methods.
type NotificationSink interface {
	Success(message string)
	Info(message string)
	Warning(message string)
	Error(message string)
}
