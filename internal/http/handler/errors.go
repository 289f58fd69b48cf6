package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskroom.app/server/common/id"
	"taskroom.app/server/internal/http/dto"
	"taskroom.app/server/internal/service"
)

// RoomCloser evicts every real-time connection from a workspace room.
type RoomCloser interface {
	CloseRoom(ctx context.Context, workspaceID int64) int
}

// pathID parses an id path parameter and answers 400 when it is not a valid id.
func pathID(c *gin.Context, name string) (int64, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return parsed, true
}

func writeServiceError(c *gin.Context, err error, workspaceID, taskID int64) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.TaskNotFoundMessage(workspaceID, taskID)})
	case errors.Is(err, service.ErrWorkspaceNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: dto.WorkspaceNotFoundMessage(workspaceID)})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return false
	}
	return true
}
