package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

var ErrInvalidStatus = errors.New("invalid task status")

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Next returns the status the advance action moves to.
// The cycle is TODO -> IN_PROGRESS -> DONE -> TODO.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusTodo
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts the wire form as well as lower-case and dashed
// spellings typed on a command line ("in-progress").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_"))
	s := Status(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Status       Status    `json:"status"`
	TotalMinutes int       `json:"total_minutes"`
	UserID       string    `json:"user_id"`
	AssignedTo   *string   `json:"assigned_to"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VisibleTo reports whether the user owns or is assigned the task.
func (t *Task) VisibleTo(userID string) bool {
	return t.UserID == userID || (t.AssignedTo != nil && *t.AssignedTo == userID)
}

// TaskPatch is a partial update of a task. Only present fields are applied.
type TaskPatch struct {
	Title        Field[string] `json:"title,omitzero"`
	Description  Field[string] `json:"description,omitzero"`
	Status       Field[Status] `json:"status,omitzero"`
	TotalMinutes Field[int]    `json:"total_minutes,omitzero"`
	AssignedTo   Field[string] `json:"assigned_to,omitzero"`
}

func (p TaskPatch) Empty() bool {
	return p.Title.IsZero() &&
		p.Description.IsZero() &&
		p.Status.IsZero() &&
		p.TotalMinutes.IsZero() &&
		p.AssignedTo.IsZero()
}

// Apply returns a copy of task with the patch applied.
func (p TaskPatch) Apply(task Task) Task {
	if v, ok := p.Title.Get(); ok {
		task.Title = v
	}
	switch {
	case p.Description.IsNull():
		task.Description = nil
	case p.Description.IsSet():
		v := p.Description.Value()
		task.Description = &v
	}
	if v, ok := p.Status.Get(); ok {
		task.Status = v
	}
	if v, ok := p.TotalMinutes.Get(); ok {
		task.TotalMinutes = v
	}
	switch {
	case p.AssignedTo.IsNull():
		task.AssignedTo = nil
	case p.AssignedTo.IsSet():
		v := p.AssignedTo.Value()
		task.AssignedTo = &v
	}
	return task
}
