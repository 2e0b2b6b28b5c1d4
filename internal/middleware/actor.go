package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kharcha/internal/errors"
)

const actorIDKey = "actorID"

// Actor returns a Gin middleware that extracts the acting user's id from
// the X-User-ID header. Authentication happens at the upstream gateway;
// this service only needs the identity it forwards, for audit trails.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(apperrors.ErrUnauthorized.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrUnauthorized.Code,
					"message": "Missing or invalid X-User-ID header",
				},
			})
			return
		}

		c.Set(actorIDKey, uint(id))
		c.Next()
	}
}
