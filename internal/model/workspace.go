package model

import "time"

const DefaultWorkspaceName = "New workspace"

type Workspace struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkspaceSummary is the list/browse view of a workspace. TaskCount comes
// from an aggregate, task bodies are never loaded to build it.
type WorkspaceSummary struct {
	ID        int64  `json:"id,string"`
	Name      string `json:"name"`
	TaskCount int64  `json:"taskCount"`
}

// WorkspacePatch carries the mutable workspace fields. Nil fields are left untouched.
type WorkspacePatch struct {
	Name *string
}

func (p WorkspacePatch) Apply(ws *Workspace) {
	if p.Name != nil {
		ws.Name = *p.Name
	}
}
