package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

func steppingClock() func() time.Time {
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestListScopedAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New().WithClock(steppingClock())

	first, err := s.Insert(ctx, model.CreateInput{Title: "first"}.Record("u1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, model.CreateInput{Title: "other"}.Record("u2"))
	require.NoError(t, err)
	second, err := s.Insert(ctx, model.CreateInput{Title: "second"}.Record("u1"))
	require.NoError(t, err)

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := New()

	task, err := s.Insert(ctx, model.CreateInput{Title: "mine"}.Record("u1"))
	require.NoError(t, err)

	_, err = s.Update(ctx, "u2", task.ID, model.UpdateInput{Status: model.Ptr(model.StatusDone)})
	assert.ErrorIs(t, err, store.ErrNoRows)
	assert.ErrorIs(t, s.Delete(ctx, "u2", task.ID), store.ErrNoRows)

	updated, err := s.Update(ctx, "u1", task.ID, model.UpdateInput{Status: model.Ptr(model.StatusDone)})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Equal(t, "mine", updated.Title)

	require.NoError(t, s.Delete(ctx, "u1", task.ID))
	assert.ErrorIs(t, s.Delete(ctx, "u1", task.ID), store.ErrNoRows)
}

func TestReturnedTasksAreDetached(t *testing.T) {
	ctx := context.Background()
	s := New()

	task, err := s.Insert(ctx, model.CreateInput{Title: "x", Description: "keep"}.Record("u1"))
	require.NoError(t, err)
	*task.Description = "mutated"

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "keep", *got[0].Description)
}
