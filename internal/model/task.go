package model

import "time"

const DefaultTaskTitle = "New task"

type Task struct {
	ID          int64      `json:"id,string"`
	WorkspaceID int64      `json:"workspaceId,string"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// SameContent reports whether two tasks carry the same user-visible state,
// ignoring timestamps.
func (t Task) SameContent(other Task) bool {
	if t.ID != other.ID || t.WorkspaceID != other.WorkspaceID ||
		t.Title != other.Title || t.Completed != other.Completed || t.Order != other.Order {
		return false
	}
	switch {
	case t.Deadline == nil && other.Deadline == nil:
		return true
	case t.Deadline == nil || other.Deadline == nil:
		return false
	default:
		return t.Deadline.Equal(*other.Deadline)
	}
}

// TaskPatch lists the task fields a caller wants to change. A nil field is
// left as is. Deadline is tri-state: SetDeadline=false keeps the current
// value, SetDeadline=true with a nil Deadline clears it.
type TaskPatch struct {
	Title       *string
	Completed   *bool
	SetDeadline bool
	Deadline    *time.Time
	Order       *int
}

// Apply merges the patch into t field by field. Identity fields are never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.SetDeadline {
		if p.Deadline == nil {
			t.Deadline = nil
		} else {
			d := *p.Deadline
			t.Deadline = &d
		}
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
}

// ReplaceWith builds a patch that overwrites every mutable field with the
// values of t, as a full update does.
func ReplaceWith(t Task) TaskPatch {
	order := t.Order
	title := t.Title
	completed := t.Completed
	return TaskPatch{
		Title:       &title,
		Completed:   &completed,
		SetDeadline: true,
		Deadline:    t.Deadline,
		Order:       &order,
	}
}
