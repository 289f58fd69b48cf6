package dto

import (
	"time"

	"taskroom.app/server/internal/model"
)

type CreateTaskRequest struct {
	Title     string     `json:"title" binding:"max=1024"`
	Completed bool       `json:"completed"`
	Deadline  *time.Time `json:"deadline"`
}

func (r CreateTaskRequest) Task() model.Task {
	return model.Task{Title: r.Title, Completed: r.Completed, Deadline: r.Deadline}
}

// TaskFields is a partial task update. Only the fields present in the
// payload are changed; "deadline": null clears the deadline.
type TaskFields struct {
	Title     *string      `json:"title" binding:"omitempty,max=1024"`
	Completed *bool        `json:"completed"`
	Deadline  NullableTime `json:"deadline"`
	Order     *int         `json:"order"`
}

func (f TaskFields) Patch() model.TaskPatch {
	return model.TaskPatch{
		Title:       f.Title,
		Completed:   f.Completed,
		SetDeadline: f.Deadline.Set,
		Deadline:    f.Deadline.Time,
		Order:       f.Order,
	}
}

// ReplaceTaskRequest is a full task update. Omitted fields take their zero value.
type ReplaceTaskRequest struct {
	Title     string     `json:"title" binding:"max=1024"`
	Completed bool       `json:"completed"`
	Deadline  *time.Time `json:"deadline"`
	Order     int        `json:"order"`
}

func (r ReplaceTaskRequest) Patch() model.TaskPatch {
	title := r.Title
	if title == "" {
		title = model.DefaultTaskTitle
	}
	return model.ReplaceWith(model.Task{
		Title:     title,
		Completed: r.Completed,
		Deadline:  r.Deadline,
		Order:     r.Order,
	})
}

type TaskResponse struct {
	ID          int64      `json:"id,string"`
	WorkspaceID int64      `json:"workspaceId,string"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline"`
	Order       int        `json:"order"`
}

func ToTaskResponse(t model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		WorkspaceID: t.WorkspaceID,
		Title:       t.Title,
		Completed:   t.Completed,
		Deadline:    t.Deadline,
		Order:       t.Order,
	}
}

func ToTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}
