// Package pgstore keeps tasks in PostgreSQL (for instance the database
// behind a hosted Supabase project) through database/sql and lib/pq.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     TEXT NOT NULL,
	title       VARCHAR(200) NOT NULL CHECK (length(btrim(title)) > 0),
	description VARCHAR(1000),
	due_date    DATE,
	priority    TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
	status      TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in_progress', 'done')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tasks_user_created_idx ON tasks (user_id, created_at DESC);
`

const taskColumns = `id, user_id, title, description, due_date, priority, status, created_at, updated_at`

func Connect(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tasks table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate tasks: %w", describe(err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t        model.Task
		desc     sql.NullString
		priority string
		status   string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &desc, &t.DueDate, &priority, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	if desc.Valid {
		d := desc.String
		t.Description = &d
	}
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	return t, nil
}

func (s *Store) List(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", describe(err))
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", describe(err))
	}
	return tasks, nil
}

func (s *Store) Insert(ctx context.Context, rec model.NewTask) (model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, due_date, priority, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+taskColumns,
		rec.UserID,
		rec.Title,
		nullString(rec.Description),
		nullDate(rec.DueDate),
		string(rec.Priority),
		string(rec.Status),
	)
	t, err := scanTask(row)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", describe(err))
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, userID, id string, patch model.UpdateInput) (model.Task, error) {
	query, args := updateQuery(userID, id, patch)
	t, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, store.ErrNoRows
		}
		return model.Task{}, fmt.Errorf("update task: %w", describe(err))
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", describe(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return store.ErrNoRows
	}
	return nil
}

// updateQuery builds an UPDATE that touches only the present fields.
func updateQuery(userID, id string, patch model.UpdateInput) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description.Present() {
		add("description", nullString(patch.Description.Value()))
	}
	if patch.DueDate.Present() {
		add("due_date", nullDate(patch.DueDate.Value()))
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id, userID)
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)-1) +
		` AND user_id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + taskColumns
	return query, args
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// describe turns postgres errors into the message a user can act on.
// A malformed uuid means the id cannot belong to the user at all.
func describe(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "invalid_text_representation":
		return store.ErrNoRows
	case "check_violation", "string_data_right_truncation", "not_null_violation":
		return fmt.Errorf("%s: %w", pqErr.Message, err)
	}
	return err
}
