package sqlc

import (
	"context"
)

const createWorkspace = `-- name: CreateWorkspace :one
INSERT INTO workspaces (id, name)
VALUES ($1, $2)
RETURNING id, name, created_at, updated_at
`

type CreateWorkspaceParams struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (q *Queries) CreateWorkspace(ctx context.Context, arg CreateWorkspaceParams) (Workspace, error) {
	row := q.db.QueryRow(ctx, createWorkspace, arg.ID, arg.Name)
	var i Workspace
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWorkspace = `-- name: GetWorkspace :one
SELECT id, name, created_at, updated_at FROM workspaces
WHERE id = $1
`

func (q *Queries) GetWorkspace(ctx context.Context, id int64) (Workspace, error) {
	row := q.db.QueryRow(ctx, getWorkspace, id)
	var i Workspace
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const lockWorkspace = `-- name: LockWorkspace :one
SELECT id, name, created_at, updated_at FROM workspaces
WHERE id = $1
FOR UPDATE
`

// LockWorkspace takes a row lock that is held until the surrounding
// transaction ends.
func (q *Queries) LockWorkspace(ctx context.Context, id int64) (Workspace, error) {
	row := q.db.QueryRow(ctx, lockWorkspace, id)
	var i Workspace
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateWorkspace = `-- name: UpdateWorkspace :one
UPDATE workspaces
SET name = $2, updated_at = NOW()
WHERE id = $1
RETURNING id, name, created_at, updated_at
`

type UpdateWorkspaceParams struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (q *Queries) UpdateWorkspace(ctx context.Context, arg UpdateWorkspaceParams) (Workspace, error) {
	row := q.db.QueryRow(ctx, updateWorkspace, arg.ID, arg.Name)
	var i Workspace
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteWorkspace = `-- name: DeleteWorkspace :execrows
DELETE FROM workspaces
WHERE id = $1
`

func (q *Queries) DeleteWorkspace(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWorkspace, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getWorkspaceSummary = `-- name: GetWorkspaceSummary :one
SELECT w.id, w.name, COUNT(t.id) AS task_count
FROM workspaces w
LEFT JOIN tasks t ON t.workspace_id = w.id
WHERE w.id = $1
GROUP BY w.id, w.name
`

type GetWorkspaceSummaryRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TaskCount int64  `json:"task_count"`
}

func (q *Queries) GetWorkspaceSummary(ctx context.Context, id int64) (GetWorkspaceSummaryRow, error) {
	row := q.db.QueryRow(ctx, getWorkspaceSummary, id)
	var i GetWorkspaceSummaryRow
	err := row.Scan(&i.ID, &i.Name, &i.TaskCount)
	return i, err
}

const listWorkspaceSummaries = `-- name: ListWorkspaceSummaries :many
SELECT w.id, w.name, COUNT(t.id) AS task_count
FROM workspaces w
LEFT JOIN tasks t ON t.workspace_id = w.id
GROUP BY w.id, w.name
ORDER BY w.id
`

type ListWorkspaceSummariesRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	TaskCount int64  `json:"task_count"`
}

func (q *Queries) ListWorkspaceSummaries(ctx context.Context) ([]ListWorkspaceSummariesRow, error) {
	rows, err := q.db.Query(ctx, listWorkspaceSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListWorkspaceSummariesRow
	for rows.Next() {
		var i ListWorkspaceSummariesRow
		if err := rows.Scan(&i.ID, &i.Name, &i.TaskCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
