package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID stamps each request with a correlation identifier, echoed on the
// response and stored on the request context for the logger. Inbound values
// are honored only up to a sanity length cap.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID))

		c.Next()
	}
}
