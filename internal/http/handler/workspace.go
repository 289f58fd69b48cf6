package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskroom.app/server/common/logger"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/dto"
	"taskroom.app/server/internal/service"
)

// WorkspaceHandler serves the workspace resource. Every successful mutation
// is broadcast to all real-time connections.
type WorkspaceHandler struct {
	workspaces service.WorkspaceService
	gateway    *broadcast.Gateway
	rooms      RoomCloser
}

func NewWorkspaceHandler(workspaces service.WorkspaceService, gateway *broadcast.Gateway, rooms RoomCloser) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, gateway: gateway, rooms: rooms}
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	summaries, err := h.workspaces.GetWorkspaces(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, 0, 0)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkspaceResponses(summaries))
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID, ok := pathID(c, "workspaceId")
	if !ok {
		return
	}

	summary, err := h.workspaces.GetWorkspaceSummary(c.Request.Context(), workspaceID)
	if err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkspaceResponse(*summary))
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, err := h.workspaces.AddWorkspace(ctx, req.Name)
	if err != nil {
		writeServiceError(c, err, 0, 0)
		return
	}

	h.gateway.All().Send(ctx, broadcast.AddWorkspace(*summary))
	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(*summary))
}

func (h *WorkspaceHandler) Update(c *gin.Context) {
	workspaceID, ok := pathID(c, "workspaceId")
	if !ok {
		return
	}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{WorkspaceID: &workspaceID})

	var req dto.UpdateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	summary, err := h.workspaces.UpdateWorkspaceInfo(ctx, workspaceID, req.Patch())
	if err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}

	h.gateway.All().Send(ctx, broadcast.UpdateWorkspaceName(summary.ID, summary.Name))
	c.JSON(http.StatusOK, dto.ToWorkspaceResponse(*summary))
}

// Delete force-closes the workspace room before deleting, so no connection
// stays joined to a workspace that is gone.
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	workspaceID, ok := pathID(c, "workspaceId")
	if !ok {
		return
	}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{WorkspaceID: &workspaceID})

	if _, err := h.workspaces.GetWorkspaceSummary(ctx, workspaceID); err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}

	h.rooms.CloseRoom(ctx, workspaceID)

	summary, err := h.workspaces.DeleteWorkspace(ctx, workspaceID)
	if err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}

	// Connections that joined while the delete ran are evicted here.
	h.rooms.CloseRoom(ctx, workspaceID)

	h.gateway.All().Send(ctx, broadcast.DeleteWorkspace(workspaceID))
	c.JSON(http.StatusOK, dto.ToWorkspaceResponse(*summary))
}
