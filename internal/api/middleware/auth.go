package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authorizer checks a presented credential. Satisfied by auth.Verifier.
type Authorizer interface {
	Verify(credential string) bool
}

// AuthMiddleware creates a middleware that validates the board credential.
//
// The credential is either the shared API key or a board token, presented as
// a bearer Authorization header. Webhook producers that cannot set headers may
// fall back to the apiKey query parameter.
func AuthMiddleware(authorizer Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
				c.Abort()
				return
			}
			credential = parts[1]
		} else {
			credential = c.Query("apiKey")
		}

		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			c.Abort()
			return
		}

		if !authorizer.Verify(credential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}

		c.Next()
	}
}
