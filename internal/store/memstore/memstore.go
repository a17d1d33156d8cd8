// Package memstore is an in-process persistence backend. Nothing survives
// the process; it backs tests and the "memory" backend.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

type entry struct {
	task model.Task
	seq  uint64
}

type Store struct {
	mu    sync.RWMutex
	tasks map[string]entry
	seq   uint64
	now   func() time.Time
}

func New() *Store {
	return &Store{tasks: make(map[string]entry), now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) List(_ context.Context, userID string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var es []entry
	for _, e := range s.tasks {
		if e.task.UserID == userID {
			es = append(es, e)
		}
	}
	sort.Slice(es, func(i, j int) bool {
		if !es[i].task.CreatedAt.Equal(es[j].task.CreatedAt) {
			return es[i].task.CreatedAt.After(es[j].task.CreatedAt)
		}
		return es[i].seq > es[j].seq
	})
	out := make([]model.Task, 0, len(es))
	for _, e := range es {
		out = append(out, clone(e.task))
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, rec model.NewTask) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := model.Task{
		ID:          uuid.NewString(),
		UserID:      rec.UserID,
		Title:       rec.Title,
		Description: rec.Description,
		DueDate:     rec.DueDate,
		Priority:    rec.Priority,
		Status:      rec.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t = clone(t)
	s.seq++
	s.tasks[t.ID] = entry{task: t, seq: s.seq}
	return clone(t), nil
}

func (s *Store) Update(_ context.Context, userID, id string, patch model.UpdateInput) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tasks[id]
	if !ok || e.task.UserID != userID {
		return model.Task{}, store.ErrNoRows
	}
	e.task = clone(patch.Apply(e.task))
	e.task.UpdatedAt = s.now()
	s.tasks[id] = e
	return clone(e.task), nil
}

func (s *Store) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tasks[id]
	if !ok || e.task.UserID != userID {
		return store.ErrNoRows
	}
	delete(s.tasks, id)
	return nil
}

// clone detaches the optional fields so callers cannot mutate stored state.
func clone(t model.Task) model.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
