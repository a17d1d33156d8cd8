package tasks

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// StatusFilter is either All or one of the task statuses.
type StatusFilter string

const All StatusFilter = "all"

// StatusFilters is the order the dashboard cycles through.
var StatusFilters = []StatusFilter{All, StatusFilter(model.StatusTodo), StatusFilter(model.StatusInProgress), StatusFilter(model.StatusDone)}

func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || s == string(All) {
		return All, nil
	}
	st, err := model.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("unknown status filter %q (want all, todo, in_progress or done)", s)
	}
	return StatusFilter(st), nil
}

// Next returns the filter after f in StatusFilters, wrapping around.
func (f StatusFilter) Next() StatusFilter {
	for i, x := range StatusFilters {
		if x == f {
			return StatusFilters[(i+1)%len(StatusFilters)]
		}
	}
	return All
}

func (f StatusFilter) Label() string {
	if f == All || f == "" {
		return "All"
	}
	return model.Status(f).Label()
}

func (f StatusFilter) matches(s model.Status) bool {
	return f == All || f == "" || model.Status(f) == s
}

// Filter returns the tasks that pass both the status filter and the search
// query, in input order. The query matches case-insensitively anywhere in
// the title or the description.
func Filter(tasks []model.Task, query string, status StatusFilter) []model.Task {
	q := strings.ToLower(query)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if !status.matches(t.Status) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) &&
			(t.Description == nil || !strings.Contains(strings.ToLower(*t.Description), q)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Counts aggregates the full, unfiltered list.
type Counts struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
}

// For returns the count shown next to a status filter.
func (c Counts) For(f StatusFilter) int {
	switch model.Status(f) {
	case model.StatusTodo:
		return c.Todo
	case model.StatusInProgress:
		return c.InProgress
	case model.StatusDone:
		return c.Done
	}
	return c.Total
}

func Count(tasks []model.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusTodo:
			c.Todo++
		case model.StatusInProgress:
			c.InProgress++
		case model.StatusDone:
			c.Done++
		}
	}
	return c
}
