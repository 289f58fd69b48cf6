package store

import (
	"context"
	"errors"

	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/ordering"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// WorkspaceStore defines the contract for workspace data access
type WorkspaceStore interface {
	GetByID(ctx context.Context, id int64) (*model.Workspace, error)
	// Lock reads the workspace and holds a row lock on it until the
	// surrounding transaction ends.
	Lock(ctx context.Context, id int64) (*model.Workspace, error)
	GetSummary(ctx context.Context, id int64) (*model.WorkspaceSummary, error)
	ListSummaries(ctx context.Context) ([]model.WorkspaceSummary, error)
	Create(ctx context.Context, ws *model.Workspace) error // assigns ws.ID
	Update(ctx context.Context, ws *model.Workspace) error
	Delete(ctx context.Context, id int64) error // cascades to tasks
}

// TaskStore defines the contract for task data access. Every call is scoped
// by the owning workspace.
type TaskStore interface {
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Task, error)
	GetByID(ctx context.Context, workspaceID, id int64) (*model.Task, error)
	Count(ctx context.Context, workspaceID int64) (int, error)
	Create(ctx context.Context, task *model.Task) error // assigns task.ID
	Update(ctx context.Context, task *model.Task) error
	ShiftOrders(ctx context.Context, workspaceID int64, shifts []ordering.Shift) error
	Delete(ctx context.Context, workspaceID, id int64) error
}
