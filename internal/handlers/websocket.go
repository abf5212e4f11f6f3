package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/services"
)

// WebSocketHandler attaches the caller to the hub for live decision and
// booking updates.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request, c.GetUint("userId"))
	}
}
