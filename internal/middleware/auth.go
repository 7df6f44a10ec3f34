package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MatthewBerasa/PEISS-APIs/internal/security"
)

const ClaimsKey = "user_info"

// Auth guards a route group with a bearer access token. Expired tokens get a
// distinct message so the client knows to refresh instead of re-login.
func Auth(issuer *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		info, err := issuer.Verify(tokenStr, security.TokenClassAccess)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
			return
		}

		c.Set(ClaimsKey, info)
		c.Next()
	}
}
