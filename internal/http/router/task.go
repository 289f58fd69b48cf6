package router

import (
	"github.com/gin-gonic/gin"

	"taskroom.app/server/internal/http/handler"
)

// TaskRouter expects rg to carry the :workspaceId parameter.
func TaskRouter(rg *gin.RouterGroup, h *handler.TaskHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:taskId", h.Get)
	rg.PATCH("/:taskId", h.Patch)
	rg.PUT("/:taskId", h.Replace)
	rg.DELETE("/:taskId", h.Delete)
}
