package model

import "strings"

// Clearable is an update field with three states: untouched (zero value),
// set to a value, or cleared to null.
type Clearable[T any] struct {
	present bool
	value   *T
}

func Set[T any](v T) Clearable[T] {
	return Clearable[T]{present: true, value: &v}
}

func Clear[T any]() Clearable[T] {
	return Clearable[T]{present: true}
}

// Present reports whether the field should be written at all.
func (c Clearable[T]) Present() bool { return c.present }

// Value is nil when the field is untouched or cleared.
func (c Clearable[T]) Value() *T { return c.value }

// CreateInput carries the user-supplied fields of a new task.
type CreateInput struct {
	Title       string
	Description string // empty means none
	DueDate     *Date
	Priority    Priority // empty means medium
	Status      Status   // empty means todo
}

// Record applies defaults and binds the input to its owner.
func (in CreateInput) Record(userID string) NewTask {
	rec := NewTask{
		UserID:   userID,
		Title:    strings.TrimSpace(in.Title),
		DueDate:  in.DueDate,
		Priority: in.Priority,
		Status:   in.Status,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		rec.Description = &d
	}
	if rec.Priority == "" {
		rec.Priority = PriorityMedium
	}
	if rec.Status == "" {
		rec.Status = StatusTodo
	}
	return rec
}

// UpdateInput carries a partial update. Nil pointers and untouched
// Clearables leave the stored value alone.
type UpdateInput struct {
	Title       *string
	Description Clearable[string]
	DueDate     Clearable[Date]
	Priority    *Priority
	Status      *Status
}

// Empty reports whether no field is set.
func (u UpdateInput) Empty() bool {
	return u.Title == nil && !u.Description.Present() && !u.DueDate.Present() &&
		u.Priority == nil && u.Status == nil
}

// Normalize trims the title and turns a blank description into a clear.
func (u UpdateInput) Normalize() UpdateInput {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		u.Title = &t
	}
	if v := u.Description.Value(); v != nil {
		d := strings.TrimSpace(*v)
		if d == "" {
			u.Description = Clear[string]()
		} else {
			u.Description = Set(d)
		}
	}
	return u
}

// Apply returns t with the update's fields written over it.
func (u UpdateInput) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description.Present() {
		t.Description = copyPtr(u.Description.Value())
	}
	if u.DueDate.Present() {
		t.DueDate = copyPtr(u.DueDate.Value())
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a small helper for building UpdateInput literals.
func Ptr[T any](v T) *T { return &v }
