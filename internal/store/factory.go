package store

import (
	"taskroom.app/server/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Workspaces() WorkspaceStore {
	return newWorkspaceStore(s.queries)
}

func (s *Stores) Tasks() TaskStore {
	return newTaskStore(s.queries)
}
