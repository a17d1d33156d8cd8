// Package tasks holds the signed-in user's task list and keeps it in step
// with the persistence service.
//
// A Store is bound to one identity for its whole life; Session replaces it
// when the identity changes. Local state is only touched after the backend
// has answered successfully, and every answer is reported once through the
// Notifier.
package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Makepad-fr/tasktracker/internal/auth"
	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

// State is the load state of a Store.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type Store struct {
	client   store.Client
	user     *auth.User
	notifier Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	tasks []model.Task
	state State
}

// New binds a store to user, which may be nil when nobody is signed in.
func New(client store.Client, user *auth.User, opts ...Option) *Store {
	s := &Store{
		client:   client,
		notifier: discard{},
		logger:   slog.Default(),
		tasks:    []model.Task{},
	}
	if user != nil {
		u := *user
		s.user = &u
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "tasks")
	return s
}

func (s *Store) User() *auth.User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Tasks returns a snapshot of the local list, newest first.
// Treat it as stale while State is not Ready.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// FetchAll replaces the local list with the user's tasks. Without a user the
// list becomes empty and no error is returned. On failure the previous list
// is kept. The store is Ready afterwards in every case.
func (s *Store) FetchAll(ctx context.Context) error {
	s.setState(Loading)
	defer s.setState(Ready)

	if s.user == nil {
		s.mu.Lock()
		s.tasks = []model.Task{}
		s.mu.Unlock()
		return nil
	}

	list, err := s.client.List(ctx, s.user.ID)
	if err != nil {
		s.logger.Warn("fetch failed", "user_id", s.user.ID, "error", err)
		s.notifier.Notify(failure("Error fetching tasks", err))
		return &RemoteError{Op: "fetch", Err: err}
	}
	if list == nil {
		list = []model.Task{}
	}

	s.mu.Lock()
	s.tasks = list
	s.mu.Unlock()
	s.logger.Debug("fetched tasks", "user_id", s.user.ID, "count", len(list))
	return nil
}

// Create inserts a task and puts it at the front of the local list.
func (s *Store) Create(ctx context.Context, in model.CreateInput) (model.Task, error) {
	if s.user == nil {
		return model.Task{}, ErrUnauthenticated
	}
	if v := model.ValidateCreate(in); v != nil {
		return model.Task{}, v
	}

	t, err := s.client.Insert(ctx, in.Record(s.user.ID))
	if err != nil {
		s.logger.Warn("create failed", "user_id", s.user.ID, "error", err)
		s.notifier.Notify(failure("Error creating task", err))
		return model.Task{}, &RemoteError{Op: "create", Err: err}
	}

	s.mu.Lock()
	s.tasks = append([]model.Task{t}, s.tasks...)
	s.mu.Unlock()

	s.logger.Debug("created task", "user_id", s.user.ID, "task_id", t.ID)
	s.notifier.Notify(success("Task created", "Your task has been created successfully."))
	return t, nil
}

// Update sends only the fields present in patch and replaces the task in
// place with the backend's version.
func (s *Store) Update(ctx context.Context, id string, patch model.UpdateInput) (model.Task, error) {
	if s.user == nil {
		return model.Task{}, ErrUnauthenticated
	}
	patch = patch.Normalize()
	if v := model.ValidateUpdate(patch); v != nil {
		return model.Task{}, v
	}

	t, err := s.client.Update(ctx, s.user.ID, id, patch)
	if err != nil {
		s.logger.Warn("update failed", "user_id", s.user.ID, "task_id", id, "error", err)
		s.notifier.Notify(failure("Error updating task", err))
		return model.Task{}, &RemoteError{Op: "update", Err: err}
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = t
			break
		}
	}
	s.mu.Unlock()

	s.logger.Debug("updated task", "user_id", s.user.ID, "task_id", id)
	s.notifier.Notify(success("Task updated", "Your task has been updated successfully."))
	return t, nil
}

// Delete removes a task remotely, then from the local list.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.user == nil {
		return ErrUnauthenticated
	}

	if err := s.client.Delete(ctx, s.user.ID, id); err != nil {
		s.logger.Warn("delete failed", "user_id", s.user.ID, "task_id", id, "error", err)
		s.notifier.Notify(failure("Error deleting task", err))
		return &RemoteError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	kept := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()

	s.logger.Debug("deleted task", "user_id", s.user.ID, "task_id", id)
	s.notifier.Notify(success("Task deleted", "Your task has been deleted successfully."))
	return nil
}
