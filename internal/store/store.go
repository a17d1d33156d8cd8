// Package store defines the persistence service the task store talks to.
// Every call is scoped to the owning user; ids and timestamps are assigned
// by the backend.
package store

import (
	"context"
	"errors"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// Collection is the name of the task collection in every backend.
const Collection = "tasks"

// ErrNoRows is returned when an update or delete matched no task owned by the user.
var ErrNoRows = errors.New("no matching task for this user")

type Client interface {
	// List returns the user's tasks, newest first.
	List(ctx context.Context, userID string) ([]model.Task, error)
	Insert(ctx context.Context, rec model.NewTask) (model.Task, error)
	// Update writes only the fields present in patch.
	Update(ctx context.Context, userID, id string, patch model.UpdateInput) (model.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
