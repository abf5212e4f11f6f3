package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/pkg/utils"
)

// DefaultPersonID identifies callers that send no identity at all.
const DefaultPersonID uint = 1

// Identity resolves the calling person and stores it under "userId". A bearer
// token (header, or ?token= for websockets) wins and must be valid. Otherwise
// the X-User-Id header or ?userId= is trusted as given.
func Identity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString != "" && secret != "" {
			personID, err := utils.PersonIDFromToken(tokenString, secret)
			if err != nil {
				c.JSON(401, gin.H{"error": "Invalid token"})
				c.Abort()
				return
			}
			c.Set("userId", personID)
			c.Next()
			return
		}

		raw := c.GetHeader("X-User-Id")
		if raw == "" {
			raw = c.Query("userId")
		}
		personID := DefaultPersonID
		if raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				c.JSON(400, gin.H{"error": "Invalid X-User-Id"})
				c.Abort()
				return
			}
			personID = uint(id)
		}
		c.Set("userId", personID)
		c.Next()
	}
}
