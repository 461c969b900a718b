package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader is the HTTP header carrying the trace ID.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for the trace ID.
	TraceIDKey = "trace_id"
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey = "user_id"
	// RoleKey is the context key for the authenticated role.
	RoleKey = "role"

	requestContextKey = "request_context"
)

// RequestContext holds request-scoped metadata shared across middleware and
// handlers.
type RequestContext struct {
	TraceID   string
	UserID    string
	IP        string
	UserAgent string
}

// EnrichContext attaches a trace ID and request metadata to every request.
// An inbound X-Trace-ID is honored so traces survive proxy hops.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set(requestContextKey, &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the request metadata. A zero-value context is
// returned when the enrichment middleware did not run.
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get(requestContextKey); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}
