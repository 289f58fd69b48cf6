package dto

import "taskroom.app/server/internal/model"

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"max=255"`
}

type UpdateWorkspaceRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

func (r UpdateWorkspaceRequest) Patch() model.WorkspacePatch {
	return model.WorkspacePatch{Name: r.Name}
}

type WorkspaceResponse struct {
	ID        int64  `json:"id,string"`
	Name      string `json:"name"`
	TaskCount int64  `json:"taskCount"`
}

func ToWorkspaceResponse(s model.WorkspaceSummary) WorkspaceResponse {
	return WorkspaceResponse{ID: s.ID, Name: s.Name, TaskCount: s.TaskCount}
}

func ToWorkspaceResponses(summaries []model.WorkspaceSummary) []WorkspaceResponse {
	out := make([]WorkspaceResponse, len(summaries))
	for i, s := range summaries {
		out[i] = ToWorkspaceResponse(s)
	}
	return out
}
