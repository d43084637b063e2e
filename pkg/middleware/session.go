package middleware

import (
	"sentiment-analyzer/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// SessionHeader is the header carrying the opaque client session token
const SessionHeader = "X-Session-ID"

// SessionIDKey is the gin context key the session token is stored under
const SessionIDKey = "sessionID"

// RequireSession rejects requests without a session header before any
// downstream work. The token itself is accepted as-is: session
// identifiers are unauthenticated bearer values and carry no integrity
// guarantee (a known gap, see DESIGN.md).
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			c.Error(errors.NewBadRequestError("SESSION_REQUIRED", "The X-Session-ID header is required."))
			c.Abort()
			return
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}
