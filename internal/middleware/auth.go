package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TusharJoshi-11/crease/pkg/token"
)

const (
	// ScorerMatchIDKey is the gin context key holding the match the
	// authenticated scorer token is scoped to.
	ScorerMatchIDKey = "scorer_match_id"
)

// ScorerAuthMiddleware validates the Bearer scorer token and stores its match
// scope in the request context.
func ScorerAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateScorerToken(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		c.Set(ScorerMatchIDKey, claims.MatchID)
		c.Next()
	}
}

// ScorerMatchID extracts the authenticated scorer's match scope.
func ScorerMatchID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ScorerMatchIDKey)
	if !exists {
		return 0, false
	}
	matchID, ok := v.(uint)
	return matchID, ok
}
