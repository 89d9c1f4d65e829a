package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"mountainshares.backend/pkg/logger"
	"mountainshares.backend/pkg/utils"
)

const RequestIDKey = "request_id"

// RequestIDMiddleware assigns each delivery a request id so a webhook can be
// traced from intake through settlement logs. An inbound X-Request-ID is
// honored; the id is echoed back for callers that correlate retries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = utils.GenerateUUIDv7().String()
		}

		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		// Typed key so logger.WithContext(c.Request.Context()) picks it up.
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
