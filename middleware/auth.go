package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/relicsave/cache"
	"github.com/kasuganosora/relicsave/config"
)

const (
	SessionIDKey = "session_id"
	TokenKey     = "token"
)

// Auth validates the session JWT and checks that the token is still live in
// the cache. Each accepted request extends the token's idle TTL. The token is
// read from the Bearer header or, for event streams, the token query param.
func Auth(sec config.SecurityConfig, c cache.Cache, idle time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr := bearer(ctx)
		if tokenStr == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := ParseToken(tokenStr, sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		key := cache.TokenKey(tokenStr)
		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		sid, err := c.Get(cacheCtx, key)
		if err != nil || sid != claims.SessionID {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		if idle > 0 {
			_ = c.Expire(cacheCtx, key, idle)
		}

		ctx.Set(SessionIDKey, claims.SessionID)
		ctx.Set(TokenKey, tokenStr)
		ctx.Next()
	}
}

func bearer(ctx *gin.Context) string {
	if h := ctx.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ctx.Query("token")
}

// GetSessionID retrieves the authenticated session ID from the Gin context.
func GetSessionID(c *gin.Context) string {
	if v, exists := c.Get(SessionIDKey); exists {
		return v.(string)
	}
	return ""
}

// GetToken retrieves the raw token of the authenticated request.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
