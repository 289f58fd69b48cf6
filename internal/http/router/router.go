package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/http/handler"
	"taskroom.app/server/internal/service"
)

// RealtimeServer is the WebSocket endpoint and the room closer the REST
// handlers use before deleting a workspace.
type RealtimeServer interface {
	handler.RoomCloser
	ServeWS(w http.ResponseWriter, r *http.Request)
}

func SetupRoutes(router *gin.Engine, services *service.Services, gateway *broadcast.Gateway, realtime RealtimeServer) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": gateway.Count()})
	})

	v1 := router.Group("/api/v1")
	{
		workspaceHandler := handler.NewWorkspaceHandler(services.Workspaces(), gateway, realtime)
		WorkspaceRouter(v1.Group("/workspaces"), workspaceHandler)

		taskHandler := handler.NewTaskHandler(services.Workspaces(), gateway)
		TaskRouter(v1.Group("/workspaces/:workspaceId/tasks"), taskHandler)

		RealtimeRouter(v1, realtime)
	}
}
