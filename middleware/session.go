package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"bookstore-service/pkg/ctxmanage"
	"bookstore-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "session_token"
	sessionLifetime = 7 * 24 * time.Hour
)

// Session resolves the anonymous cart session for the request. The browser
// holds a signed token whose subject is the session id; a missing or invalid
// token gets replaced with a fresh session. This is not user authentication,
// it only names the session the cart hangs off.
func (m *Mid) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		sessionId := ""
		if tokenStr, err := c.Cookie(sessionCookie); err == nil {
			sessionId = m.parseSessionToken(tokenStr)
		}

		if sessionId == "" {
			sessionId = uuid.NewString()
			tokenStr, err := m.signSessionToken(sessionId)
			if err != nil {
				slog.Error("failed to sign session token",
					slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to establish session"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, tokenStr, int(sessionLifetime.Seconds()), "/", "", false, true)
		}

		ctx := ctxmanage.WithSessionId(c.Request.Context(), sessionId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (m *Mid) signSessionToken(sessionId string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.sessionSecret)
}

// parseSessionToken returns the session id from a valid token, or "" when the
// token is expired, tampered with or otherwise unusable.
func (m *Mid) parseSessionToken(tokenStr string) string {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.sessionSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ""
	}
	return claims.Subject
}
