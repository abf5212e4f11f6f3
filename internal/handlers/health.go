package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/services"
)

func Health(hub *services.Hub, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":           "ok",
			"uptime":           time.Since(started).Round(time.Second).String(),
			"websocketClients": hub.ConnectedClients(),
		})
	}
}
