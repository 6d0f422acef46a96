package middleware

import (
	"log/slog"
	"time"

	"bookstore-service/pkg/ctxmanage"
	"bookstore-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceID assigns every request a trace id so log lines across the request
// lifecycle can be correlated.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		ctx := ctxmanage.WithTraceId(c.Request.Context(), traceId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Logger writes one structured line per request with method, path, status and
// latency.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		traceId := ctxmanage.GetTraceIdOfRequest(c)
		slog.Info("request completed",
			slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method),
			slog.String("Path", c.Request.URL.Path),
			slog.Int("Status", c.Writer.Status()),
			slog.String("Duration", time.Since(start).String()),
		)
	}
}
