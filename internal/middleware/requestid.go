package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxRequestIDKey is the gin context key carrying the request identifier.
const CtxRequestIDKey = "request_id"

// RequestIDHeader is the HTTP header propagating the request identifier.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique identifier, honouring one supplied
// by the caller, and echoes it in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
