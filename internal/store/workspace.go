package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"taskroom.app/server/common/id"
	"taskroom.app/server/core/db/sqlc"
	"taskroom.app/server/internal/model"
)

type workspaceStore struct {
	queries *sqlc.Queries
}

func newWorkspaceStore(queries *sqlc.Queries) WorkspaceStore {
	return &workspaceStore{queries: queries}
}

func (s *workspaceStore) GetByID(ctx context.Context, id int64) (*model.Workspace, error) {
	row, err := s.queries.GetWorkspace(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWorkspaceModel(row), nil
}

func (s *workspaceStore) Lock(ctx context.Context, id int64) (*model.Workspace, error) {
	row, err := s.queries.LockWorkspace(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toWorkspaceModel(row), nil
}

func (s *workspaceStore) GetSummary(ctx context.Context, id int64) (*model.WorkspaceSummary, error) {
	row, err := s.queries.GetWorkspaceSummary(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &model.WorkspaceSummary{ID: row.ID, Name: row.Name, TaskCount: row.TaskCount}, nil
}

func (s *workspaceStore) ListSummaries(ctx context.Context) ([]model.WorkspaceSummary, error) {
	rows, err := s.queries.ListWorkspaceSummaries(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]model.WorkspaceSummary, len(rows))
	for i, row := range rows {
		result[i] = model.WorkspaceSummary{ID: row.ID, Name: row.Name, TaskCount: row.TaskCount}
	}
	return result, nil
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row, err := s.queries.CreateWorkspace(ctx, sqlc.CreateWorkspaceParams{
		ID:   id.New(),
		Name: ws.Name,
	})
	if err != nil {
		return err
	}
	*ws = *toWorkspaceModel(row)
	return nil
}

func (s *workspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	row, err := s.queries.UpdateWorkspace(ctx, sqlc.UpdateWorkspaceParams{
		ID:   ws.ID,
		Name: ws.Name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	*ws = *toWorkspaceModel(row)
	return nil
}

func (s *workspaceStore) Delete(ctx context.Context, id int64) error {
	n, err := s.queries.DeleteWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toWorkspaceModel(row sqlc.Workspace) *model.Workspace {
	return &model.Workspace{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
