package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/amharic-dictionary/dictsync/internal/contribution"
	"github.com/amharic-dictionary/dictsync/internal/localstore"
)

// Session holds the optional bearer credential and whether it has been
// validated against the remote API during this process lifetime.
type Session struct {
	mu            sync.Mutex
	store         *localstore.Store
	api           RemoteAPI
	token         string
	authenticated bool
}

// NewSession creates a Session backed by the local store. The persisted token
// (if any) is restored but stays unvalidated until Authenticate succeeds.
func NewSession(ctx context.Context, store *localstore.Store, api RemoteAPI) (*Session, error) {
	s := &Session{store: store, api: api}

	token, ok, err := store.Get(ctx, localstore.KeyGitHubToken)
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	if ok && token != "" {
		s.token = token
		api.SetToken(token)
	}
	return s, nil
}

// Authenticated reports whether the credential has been validated this
// process lifetime.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// HasToken reports whether a credential is present, validated or not.
func (s *Session) HasToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Authenticate validates a bearer token against the remote API and, on
// success, persists it along with the resolved username. An empty token
// revalidates the token restored from the store.
func (s *Session) Authenticate(ctx context.Context, token string) error {
	s.mu.Lock()
	if token == "" {
		token = s.token
	}
	s.mu.Unlock()
	if token == "" {
		return fmt.Errorf("no credential to authenticate with")
	}

	s.api.SetToken(token)
	user, err := s.api.GetAuthenticatedUser(ctx)
	if err != nil {
		s.mu.Lock()
		s.api.SetToken(s.token)
		s.mu.Unlock()
		return fmt.Errorf("api.GetAuthenticatedUser() > %w", err)
	}

	if err := s.store.Set(ctx, localstore.KeyGitHubToken, token); err != nil {
		return fmt.Errorf("store.Set() > %w", err)
	}
	if user.Login != "" {
		if err := s.store.Set(ctx, localstore.KeyCurrentUsername, user.Login); err != nil {
			return fmt.Errorf("store.Set() > %w", err)
		}
	}

	s.mu.Lock()
	s.token = token
	s.authenticated = true
	s.mu.Unlock()
	return nil
}

// Logout clears the credential from the session and the store.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.authenticated = false
	s.mu.Unlock()

	s.api.SetToken("")
	if err := s.store.Delete(ctx, localstore.KeyGitHubToken); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	if err := s.store.Delete(ctx, localstore.KeyCurrentUsername); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	return nil
}

// CurrentUser returns the persisted username, or the anonymous sentinel.
func (s *Session) CurrentUser(ctx context.Context) string {
	username, ok, err := s.store.Get(ctx, localstore.KeyCurrentUsername)
	if err != nil || !ok || username == "" {
		return contribution.AnonymousContributor
	}
	return username
}
