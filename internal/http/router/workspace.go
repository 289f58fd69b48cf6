package router

import (
	"github.com/gin-gonic/gin"

	"taskroom.app/server/internal/http/handler"
)

func WorkspaceRouter(rg *gin.RouterGroup, h *handler.WorkspaceHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:workspaceId", h.Get)
	rg.PATCH("/:workspaceId", h.Update)
	rg.DELETE("/:workspaceId", h.Delete)
}
