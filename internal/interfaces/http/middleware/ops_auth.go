package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	domainerrors "mountainshares.backend/internal/domain/errors"
	"mountainshares.backend/internal/interfaces/http/response"
)

// OpsAuthMiddleware protects operator endpoints with a shared static token.
// The token is accepted as "Authorization: Bearer <token>" or "X-Ops-Token".
func OpsAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			response.Error(c, domainerrors.Unauthorized("ops endpoints disabled: no ops token configured"))
			c.Abort()
			return
		}

		presented := c.GetHeader("X-Ops-Token")
		if presented == "" {
			presented = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.Error(c, domainerrors.Unauthorized("invalid ops token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
