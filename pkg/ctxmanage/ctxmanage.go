package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type key string

const (
	// TraceIdKey carries the per-request trace id through the request context.
	TraceIdKey key = "traceId"
	// SessionIdKey carries the cart session id resolved by the session middleware.
	SessionIdKey key = "sessionId"
)

// GetTraceIdOfRequest returns the trace id injected by the trace middleware.
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId, ok := c.Request.Context().Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}

// GetSessionIdOfRequest returns the cart session id resolved by the session middleware.
func GetSessionIdOfRequest(c *gin.Context) string {
	sessionId, ok := c.Request.Context().Value(SessionIdKey).(string)
	if !ok {
		return ""
	}
	return sessionId
}

func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

func WithSessionId(ctx context.Context, sessionId string) context.Context {
	return context.WithValue(ctx, SessionIdKey, sessionId)
}
