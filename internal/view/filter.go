// Package view holds the presentation logic of the task board: filtering,
// grouping, counters and the create/edit form. Nothing here renders.
package view

import (
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// Values accepted by the status, priority and assignee selectors.
const (
	All        = "all"
	Completed  = "completed"
	Incomplete = "incomplete"
	Unassigned = "unassigned"
)

// Filter narrows a task list. Zero values and All match everything.
type Filter struct {
	Search   string
	Status   string
	Priority string
	Assignee string
}

// Active reports whether any criterion is narrowing the list.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Search) != "" ||
		!isAll(f.Status) || !isAll(f.Priority) || !isAll(f.Assignee)
}

// Apply returns the tasks matching every criterion, in their original order.
// A task assigned to an id missing from users counts as unassigned.
func (f Filter) Apply(tasks []model.Task, users []model.User) []model.Task {
	known := make(map[uuid.UUID]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matchSearch(t, search) && f.matchStatus(t) && f.matchPriority(t) && f.matchAssignee(t, known) {
			out = append(out, t)
		}
	}
	return out
}

func (f Filter) matchSearch(t model.Task, search string) bool {
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
}

func (f Filter) matchStatus(t model.Task) bool {
	switch f.Status {
	case Completed:
		return t.Completed
	case Incomplete:
		return !t.Completed
	}
	return true
}

func (f Filter) matchPriority(t model.Task) bool {
	if isAll(f.Priority) {
		return true
	}
	return t.Priority != nil && string(*t.Priority) == f.Priority
}

func (f Filter) matchAssignee(t model.Task, known map[uuid.UUID]struct{}) bool {
	if isAll(f.Assignee) {
		return true
	}
	id := knownAssignee(t, known)
	if f.Assignee == Unassigned {
		return id == nil
	}
	return id != nil && id.String() == f.Assignee
}

func knownAssignee(t model.Task, known map[uuid.UUID]struct{}) *uuid.UUID {
	if t.AssignedUser == nil {
		return nil
	}
	if _, ok := known[*t.AssignedUser]; !ok {
		return nil
	}
	return t.AssignedUser
}

func isAll(s string) bool {
	return s == "" || s == All
}
