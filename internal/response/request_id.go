package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContextKeyRequestID is the Gin context key for the request ID.
const ContextKeyRequestID = "request_id"

// ContextKeyLogger is the Gin context key for the request-scoped logger.
const ContextKeyLogger = "logger"

// RequestIDMiddleware assigns every request an ID, echoes it in X-Request-ID and
// attaches a logger carrying it.
func RequestIDMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		reqLog := log.With().Str("request_id", reqID).Logger()
		c.Set(ContextKeyLogger, &reqLog)
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// Logger returns the request-scoped logger, or a disabled logger when the
// middleware was not applied. Like zerolog.Ctx it hands back a pointer, so
// calls such as Logger(c).Error() chain directly.
func Logger(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := v.(*zerolog.Logger); ok {
			return l
		}
	}
	nop := zerolog.Nop()
	return &nop
}
