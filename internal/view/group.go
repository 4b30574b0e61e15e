package view

import (
	"strings"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func Count(tasks []model.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Group is the set of tasks shown under one assignee. User is nil for the
// unassigned group.
type Group struct {
	User  *model.User
	Tasks []model.Task
}

// GroupByAssignee buckets tasks per user in directory order, followed by
// the unassigned group. Users without tasks are skipped; the unassigned
// group is present only when non-empty.
func GroupByAssignee(tasks []model.Task, users []model.User) []Group {
	byUser := make(map[uuid.UUID][]model.Task, len(users))
	known := make(map[uuid.UUID]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}

	var unassigned []model.Task
	for _, t := range tasks {
		id := knownAssignee(t, known)
		if id == nil {
			unassigned = append(unassigned, t)
			continue
		}
		byUser[*id] = append(byUser[*id], t)
	}

	groups := make([]Group, 0, len(byUser)+1)
	for i := range users {
		if ts, ok := byUser[users[i].ID]; ok {
			groups = append(groups, Group{User: &users[i], Tasks: ts})
		}
	}
	if len(unassigned) > 0 {
		groups = append(groups, Group{Tasks: unassigned})
	}
	return groups
}

// AssigneeOf resolves the task's assignee in users. Dangling references
// resolve to nil, same as unassigned.
func AssigneeOf(t model.Task, users []model.User) *model.User {
	if t.AssignedUser == nil {
		return nil
	}
	for i := range users {
		if users[i].ID == *t.AssignedUser {
			return &users[i]
		}
	}
	return nil
}

// Initials builds an avatar label from the first letter of each word in
// the name, as written. Without a name it falls back to the upper-cased
// first letter of the email, then to "U".
func Initials(u model.User) string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		r := []rune(part)
		b.WriteRune(r[0])
	}
	if b.Len() > 0 {
		return b.String()
	}
	if email := strings.TrimSpace(u.Email); email != "" {
		return strings.ToUpper(string([]rune(email)[:1]))
	}
	return "U"
}
