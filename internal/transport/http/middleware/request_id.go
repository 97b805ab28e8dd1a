package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/commercekit/shop-platform/internal/infra/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	// Inbound IDs longer than this are replaced rather than propagated.
	maxRequestIDLength = 64
)

// RequestID injects a correlation identifier into the context and headers.
// A well-formed inbound ID is kept so callers can correlate across hops.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
