package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

// Session scopes a Store to whoever the identity provider reports. A new
// Store is built whenever that identity changes, so tasks of one user never
// outlive a sign-out.
type Session struct {
	client store.Client
	ids    auth.Provider
	opts   []Option

	mu      sync.Mutex
	current *Store
}

func NewSession(client store.Client, ids auth.Provider, opts ...Option) *Session {
	return &Session{
		client:  client,
		ids:     ids,
		opts:    opts,
		current: New(client, nil, opts...),
	}
}

// Store is the store for the identity seen at the last Refresh or SignOut.
func (s *Session) Store() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh re-reads the identity, rebuilding the store if it changed, and
// fetches the task list.
func (s *Session) Refresh(ctx context.Context) error {
	user := s.ids.CurrentUser()

	s.mu.Lock()
	if !sameUser(s.current.User(), user) {
		s.current = New(s.client, user, s.opts...)
	}
	st := s.current
	s.mu.Unlock()

	return st.FetchAll(ctx)
}

// SignOut signs out with the provider and drops every local task.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.ids.SignOut(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	st := New(s.client, nil, s.opts...)
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
	return st.FetchAll(ctx)
}

func sameUser(a, b *auth.User) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}
