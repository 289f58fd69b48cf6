package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskroom.app/server/common/logger"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/dto"
	"taskroom.app/server/internal/model"
	"taskroom.app/server/internal/service"
)

// TaskHandler serves tasks scoped to a workspace. Every successful mutation
// is broadcast to the workspace room.
type TaskHandler struct {
	workspaces service.WorkspaceService
	gateway    *broadcast.Gateway
}

func NewTaskHandler(workspaces service.WorkspaceService, gateway *broadcast.Gateway) *TaskHandler {
	return &TaskHandler{workspaces: workspaces, gateway: gateway}
}

func (h *TaskHandler) List(c *gin.Context) {
	workspaceID, ok := pathID(c, "workspaceId")
	if !ok {
		return
	}

	tasks, err := h.workspaces.GetWorkspaceTasks(c.Request.Context(), workspaceID)
	if err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

func (h *TaskHandler) Get(c *gin.Context) {
	workspaceID, taskID, ok := taskPath(c)
	if !ok {
		return
	}

	task, err := h.workspaces.GetTask(c.Request.Context(), workspaceID, taskID)
	if err != nil {
		writeServiceError(c, err, workspaceID, taskID)
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

func (h *TaskHandler) Create(c *gin.Context) {
	workspaceID, ok := pathID(c, "workspaceId")
	if !ok {
		return
	}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{WorkspaceID: &workspaceID})

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.workspaces.AddTask(ctx, workspaceID, req.Task())
	if err != nil {
		writeServiceError(c, err, workspaceID, 0)
		return
	}

	h.gateway.Room(workspaceID).Send(ctx, broadcast.AddTask(*task))
	c.JSON(http.StatusCreated, dto.ToTaskResponse(*task))
}

// Patch changes only the fields present in the body.
func (h *TaskHandler) Patch(c *gin.Context) {
	var req dto.TaskFields
	h.update(c, &req, func() model.TaskPatch { return req.Patch() })
}

// Replace overwrites every mutable field.
func (h *TaskHandler) Replace(c *gin.Context) {
	var req dto.ReplaceTaskRequest
	h.update(c, &req, func() model.TaskPatch { return req.Patch() })
}

func (h *TaskHandler) update(c *gin.Context, body any, patch func() model.TaskPatch) {
	workspaceID, taskID, ok := taskPath(c)
	if !ok {
		return
	}
	ctx := taskContext(c.Request.Context(), workspaceID, taskID)

	if !bindJSON(c, body) {
		return
	}

	task, err := h.workspaces.UpdateTask(ctx, workspaceID, taskID, patch())
	if err != nil {
		writeServiceError(c, err, workspaceID, taskID)
		return
	}

	h.gateway.Room(workspaceID).Send(ctx, broadcast.UpdateTask(*task))
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	workspaceID, taskID, ok := taskPath(c)
	if !ok {
		return
	}
	ctx := taskContext(c.Request.Context(), workspaceID, taskID)

	task, err := h.workspaces.DeleteTask(ctx, workspaceID, taskID)
	if err != nil {
		writeServiceError(c, err, workspaceID, taskID)
		return
	}

	h.gateway.Room(workspaceID).Send(ctx, broadcast.DeleteTask(task.ID))
	c.JSON(http.StatusOK, dto.ToTaskResponse(*task))
}

func taskPath(c *gin.Context) (workspaceID, taskID int64, ok bool) {
	if workspaceID, ok = pathID(c, "workspaceId"); !ok {
		return 0, 0, false
	}
	if taskID, ok = pathID(c, "taskId"); !ok {
		return 0, 0, false
	}
	return workspaceID, taskID, true
}

func taskContext(ctx context.Context, workspaceID, taskID int64) context.Context {
	return logger.WithLogFields(ctx, logger.LogFields{WorkspaceID: &workspaceID, TaskID: &taskID})
}
