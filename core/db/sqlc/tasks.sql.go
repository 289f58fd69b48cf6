package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTask = `-- name: CreateTask :one
INSERT INTO tasks (id, workspace_id, title, completed, deadline, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, workspace_id, title, completed, deadline, position, created_at, updated_at
`

type CreateTaskParams struct {
	ID          int64              `json:"id"`
	WorkspaceID int64              `json:"workspace_id"`
	Title       string             `json:"title"`
	Completed   bool               `json:"completed"`
	Deadline    pgtype.Timestamptz `json:"deadline"`
	Position    int32              `json:"position"`
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, createTask,
		arg.ID,
		arg.WorkspaceID,
		arg.Title,
		arg.Completed,
		arg.Deadline,
		arg.Position,
	)
	var i Task
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.Title,
		&i.Completed,
		&i.Deadline,
		&i.Position,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getTask = `-- name: GetTask :one
SELECT id, workspace_id, title, completed, deadline, position, created_at, updated_at FROM tasks
WHERE workspace_id = $1 AND id = $2
`

type GetTaskParams struct {
	WorkspaceID int64 `json:"workspace_id"`
	ID          int64 `json:"id"`
}

func (q *Queries) GetTask(ctx context.Context, arg GetTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, getTask, arg.WorkspaceID, arg.ID)
	var i Task
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.Title,
		&i.Completed,
		&i.Deadline,
		&i.Position,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTasksByWorkspace = `-- name: ListTasksByWorkspace :many
SELECT id, workspace_id, title, completed, deadline, position, created_at, updated_at FROM tasks
WHERE workspace_id = $1
ORDER BY position
`

func (q *Queries) ListTasksByWorkspace(ctx context.Context, workspaceID int64) ([]Task, error) {
	rows, err := q.db.Query(ctx, listTasksByWorkspace, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Task
	for rows.Next() {
		var i Task
		if err := rows.Scan(
			&i.ID,
			&i.WorkspaceID,
			&i.Title,
			&i.Completed,
			&i.Deadline,
			&i.Position,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTasksByWorkspace = `-- name: CountTasksByWorkspace :one
SELECT COUNT(*) FROM tasks
WHERE workspace_id = $1
`

func (q *Queries) CountTasksByWorkspace(ctx context.Context, workspaceID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countTasksByWorkspace, workspaceID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateTask = `-- name: UpdateTask :one
UPDATE tasks
SET title = $3, completed = $4, deadline = $5, position = $6, updated_at = NOW()
WHERE workspace_id = $1 AND id = $2
RETURNING id, workspace_id, title, completed, deadline, position, created_at, updated_at
`

type UpdateTaskParams struct {
	WorkspaceID int64              `json:"workspace_id"`
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Completed   bool               `json:"completed"`
	Deadline    pgtype.Timestamptz `json:"deadline"`
	Position    int32              `json:"position"`
}

func (q *Queries) UpdateTask(ctx context.Context, arg UpdateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx, updateTask,
		arg.WorkspaceID,
		arg.ID,
		arg.Title,
		arg.Completed,
		arg.Deadline,
		arg.Position,
	)
	var i Task
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.Title,
		&i.Completed,
		&i.Deadline,
		&i.Position,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const shiftTaskPositions = `-- name: ShiftTaskPositions :execrows
UPDATE tasks AS t
SET position = v.position, updated_at = NOW()
FROM unnest($2::bigint[], $3::integer[]) AS v(id, position)
WHERE t.workspace_id = $1 AND t.id = v.id
`

type ShiftTaskPositionsParams struct {
	WorkspaceID int64   `json:"workspace_id"`
	Ids         []int64 `json:"ids"`
	Positions   []int32 `json:"positions"`
}

func (q *Queries) ShiftTaskPositions(ctx context.Context, arg ShiftTaskPositionsParams) (int64, error) {
	result, err := q.db.Exec(ctx, shiftTaskPositions, arg.WorkspaceID, arg.Ids, arg.Positions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteTask = `-- name: DeleteTask :execrows
DELETE FROM tasks
WHERE workspace_id = $1 AND id = $2
`

type DeleteTaskParams struct {
	WorkspaceID int64 `json:"workspace_id"`
	ID          int64 `json:"id"`
}

func (q *Queries) DeleteTask(ctx context.Context, arg DeleteTaskParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTask, arg.WorkspaceID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
