package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"taskroom.app/server/common/id"
	"taskroom.app/server/core/db/sqlc"
	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/ordering"
)

type taskStore struct {
	queries *sqlc.Queries
}

func newTaskStore(queries *sqlc.Queries) TaskStore {
	return &taskStore{queries: queries}
}

func (s *taskStore) ListByWorkspace(ctx context.Context, workspaceID int64) ([]model.Task, error) {
	rows, err := s.queries.ListTasksByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return toTaskModels(rows), nil
}

func (s *taskStore) GetByID(ctx context.Context, workspaceID, id int64) (*model.Task, error) {
	row, err := s.queries.GetTask(ctx, sqlc.GetTaskParams{WorkspaceID: workspaceID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toTaskModel(row), nil
}

func (s *taskStore) Count(ctx context.Context, workspaceID int64) (int, error) {
	n, err := s.queries.CountTasksByWorkspace(ctx, workspaceID)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	row, err := s.queries.CreateTask(ctx, sqlc.CreateTaskParams{
		ID:          id.New(),
		WorkspaceID: task.WorkspaceID,
		Title:       task.Title,
		Completed:   task.Completed,
		Deadline:    toTimestamptz(task.Deadline),
		Position:    int32(task.Order),
	})
	if err != nil {
		return err
	}
	*task = *toTaskModel(row)
	return nil
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	row, err := s.queries.UpdateTask(ctx, sqlc.UpdateTaskParams{
		WorkspaceID: task.WorkspaceID,
		ID:          task.ID,
		Title:       task.Title,
		Completed:   task.Completed,
		Deadline:    toTimestamptz(task.Deadline),
		Position:    int32(task.Order),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*task = *toTaskModel(row)
	return nil
}

// ShiftOrders writes every shift in a single statement. The unique
// (workspace_id, position) constraint is deferred, so transient duplicates
// inside the transaction are fine.
func (s *taskStore) ShiftOrders(ctx context.Context, workspaceID int64, shifts []ordering.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	ids := make([]int64, len(shifts))
	positions := make([]int32, len(shifts))
	for i, shift := range shifts {
		ids[i] = shift.TaskID
		positions[i] = int32(shift.To)
	}

	n, err := s.queries.ShiftTaskPositions(ctx, sqlc.ShiftTaskPositionsParams{
		WorkspaceID: workspaceID,
		Ids:         ids,
		Positions:   positions,
	})
	if err != nil {
		return err
	}
	if int(n) != len(shifts) {
		return fmt.Errorf("shifted %d of %d tasks: %w", n, len(shifts), ErrNotFound)
	}
	return nil
}

func (s *taskStore) Delete(ctx context.Context, workspaceID, id int64) error {
	n, err := s.queries.DeleteTask(ctx, sqlc.DeleteTaskParams{WorkspaceID: workspaceID, ID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toTaskModel(row sqlc.Task) *model.Task {
	var deadline *time.Time
	if row.Deadline.Valid {
		t := row.Deadline.Time
		deadline = &t
	}

	return &model.Task{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		Title:       row.Title,
		Completed:   row.Completed,
		Deadline:    deadline,
		Order:       int(row.Position),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func toTaskModels(rows []sqlc.Task) []model.Task {
	result := make([]model.Task, len(rows))
	for i, row := range rows {
		result[i] = *toTaskModel(row)
	}
	return result
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
