package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string
	Message string
}

// Violations is returned by the Validate functions; nil means valid.
type Violations []Violation

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, x.Field+": "+x.Message)
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// Field returns the first message for field, or "".
func (v Violations) Field(field string) string {
	for _, x := range v {
		if x.Field == field {
			return x.Message
		}
	}
	return ""
}

func ValidateCreate(in CreateInput) Violations {
	var out Violations
	out = append(out, checkTitle(in.Title)...)
	out = append(out, checkDescription(in.Description)...)
	if in.Priority != "" && !in.Priority.Valid() {
		out = append(out, Violation{"priority", fmt.Sprintf("Unknown priority %q", in.Priority)})
	}
	if in.Status != "" && !in.Status.Valid() {
		out = append(out, Violation{"status", fmt.Sprintf("Unknown status %q", in.Status)})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func ValidateUpdate(in UpdateInput) Violations {
	if in.Empty() {
		return Violations{{Field: "task", Message: "no fields to update"}}
	}
	var out Violations
	if in.Title != nil {
		out = append(out, checkTitle(*in.Title)...)
	}
	if v := in.Description.Value(); v != nil {
		out = append(out, checkDescription(*v)...)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		out = append(out, Violation{"priority", fmt.Sprintf("Unknown priority %q", *in.Priority)})
	}
	if in.Status != nil && !in.Status.Valid() {
		out = append(out, Violation{"status", fmt.Sprintf("Unknown status %q", *in.Status)})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func checkTitle(title string) Violations {
	t := strings.TrimSpace(title)
	switch {
	case t == "":
		return Violations{{"title", "Title is required"}}
	case utf8.RuneCountInString(t) > MaxTitleLen:
		return Violations{{"title", "Title must be less than 200 characters"}}
	}
	return nil
}

func checkDescription(desc string) Violations {
	if utf8.RuneCountInString(strings.TrimSpace(desc)) > MaxDescriptionLen {
		return Violations{{"description", "Description must be less than 1000 characters"}}
	}
	return nil
}
