package router

import (
	"github.com/gin-gonic/gin"
)

// RealtimeRouter mounts the WebSocket endpoint. Clients may pass
// ?workspaceid=<id> to join a workspace room on connect.
func RealtimeRouter(rg *gin.RouterGroup, rt RealtimeServer) {
	rg.GET("/realtime", func(c *gin.Context) {
		rt.ServeWS(c.Writer, c.Request)
	})
}
