package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Task struct {
	ID          int64              `json:"id"`
	WorkspaceID int64              `json:"workspace_id"`
	Title       string             `json:"title"`
	Completed   bool               `json:"completed"`
	Deadline    pgtype.Timestamptz `json:"deadline"`
	Position    int32              `json:"position"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type Workspace struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
