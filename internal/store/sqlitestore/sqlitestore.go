// Package sqlitestore keeps tasks in a SQLite database through GORM.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

// taskRow is the persisted shape of a task.
type taskRow struct {
	ID          string    `gorm:"primarykey;size:36"`
	UserID      string    `gorm:"size:64;not null;index"`
	Title       string    `gorm:"size:200;not null"`
	Description *string   `gorm:"size:1000"`
	DueDate     *string   `gorm:"size:10"`
	Priority    string    `gorm:"size:10;not null"`
	Status      string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (taskRow) TableName() string {
	return store.Collection
}

// BeforeCreate assigns the id, as a hosted backend would.
func (r *taskRow) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r taskRow) toTask() (model.Task, error) {
	t := model.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    model.Priority(r.Priority),
		Status:      model.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DueDate != nil {
		d, err := model.ParseDate(*r.DueDate)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

// Store provides access to task storage.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database file at path and migrates it.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// timestamps are stored as text and sorted as text, so they must
		// share one offset
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New wraps an existing connection and migrates the tasks table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) List(ctx context.Context, userID string) ([]model.Task, error) {
	var rows []taskRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("rowid DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, rec model.NewTask) (model.Task, error) {
	row := taskRow{
		UserID:      rec.UserID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    string(rec.Priority),
		Status:      string(rec.Status),
	}
	if rec.DueDate != nil {
		d := rec.DueDate.String()
		row.DueDate = &d
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return row.toTask()
}

func (s *Store) Update(ctx context.Context, userID, id string, patch model.UpdateInput) (model.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&taskRow{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(columns(patch))
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if result.RowsAffected == 0 {
			return store.ErrNoRows
		}
		if err := tx.First(&row, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return store.ErrNoRows
			}
			return fmt.Errorf("failed to reload task: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return row.toTask()
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&taskRow{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return store.ErrNoRows
	}
	return nil
}

// columns maps the present fields of patch to column values; nil clears.
func columns(patch model.UpdateInput) map[string]any {
	cols := map[string]any{}
	if patch.Title != nil {
		cols["title"] = *patch.Title
	}
	if patch.Description.Present() {
		if v := patch.Description.Value(); v != nil {
			cols["description"] = *v
		} else {
			cols["description"] = nil
		}
	}
	if patch.DueDate.Present() {
		if v := patch.DueDate.Value(); v != nil {
			cols["due_date"] = v.String()
		} else {
			cols["due_date"] = nil
		}
	}
	if patch.Priority != nil {
		cols["priority"] = string(*patch.Priority)
	}
	if patch.Status != nil {
		cols["status"] = string(*patch.Status)
	}
	return cols
}
