package sqlitestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

// setupTestStore creates an in-memory SQLite database for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_InsertAndList(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	due := model.Date{Year: 2025, Month: time.June, Day: 30}
	created, err := s.Insert(ctx, model.CreateInput{
		Title:       "Write report",
		Description: "quarterly",
		DueDate:     &due,
		Priority:    model.PriorityHigh,
	}.Record("u1"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, model.StatusTodo, created.Status)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, due, *created.DueDate)

	second, err := s.Insert(ctx, model.CreateInput{Title: "Buy milk"}.Record("u1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, model.CreateInput{Title: "someone else"}.Record("u2"))
	require.NoError(t, err)

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, created.ID, got[1].ID)
	require.NotNil(t, got[1].Description)
	assert.Equal(t, "quarterly", *got[1].Description)
	assert.Nil(t, got[0].Description)
	assert.Nil(t, got[0].DueDate)
}

func TestStore_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	due := model.Date{Year: 2025, Month: time.June, Day: 30}
	task, err := s.Insert(ctx, model.CreateInput{Title: "a", Description: "d", DueDate: &due}.Record("u1"))
	require.NoError(t, err)

	t.Run("status only", func(t *testing.T) {
		got, err := s.Update(ctx, "u1", task.ID, model.UpdateInput{Status: model.Ptr(model.StatusDone)})
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, got.Status)
		assert.Equal(t, "a", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "d", *got.Description)
		require.NotNil(t, got.DueDate)
	})

	t.Run("clear optional fields", func(t *testing.T) {
		got, err := s.Update(ctx, "u1", task.ID, model.UpdateInput{
			Description: model.Clear[string](),
			DueDate:     model.Clear[model.Date](),
		})
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, model.StatusDone, got.Status)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := s.Update(ctx, "u2", task.ID, model.UpdateInput{Title: model.Ptr("stolen")})
		assert.ErrorIs(t, err, store.ErrNoRows)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := s.Update(ctx, "u1", "non-existent-id", model.UpdateInput{Title: model.Ptr("x")})
		assert.ErrorIs(t, err, store.ErrNoRows)
	})
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	task, err := s.Insert(ctx, model.CreateInput{Title: "gone soon"}.Record("u1"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "u2", task.ID), store.ErrNoRows)
	require.NoError(t, s.Delete(ctx, "u1", task.ID))
	assert.ErrorIs(t, s.Delete(ctx, "u1", task.ID), store.ErrNoRows)

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ListOrderAcrossOffsetChange(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	oldLocal := time.Local
	t.Cleanup(func() { time.Local = oldLocal })

	// a DST fall-back: the later insert has the smaller local wall clock
	time.Local = time.FixedZone("EDT", -4*60*60)
	first, err := s.Insert(ctx, model.CreateInput{Title: "first"}.Record("u1"))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	time.Local = time.FixedZone("EST", -5*60*60)
	second, err := s.Insert(ctx, model.CreateInput{Title: "second"}.Record("u1"))
	require.NoError(t, err)

	got, err := s.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, got[1].CreatedAt.Before(got[0].CreatedAt))
}
