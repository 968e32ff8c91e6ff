package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireCronSecret admits requests carrying "Authorization: Bearer <secret>". An empty
// secret rejects everything.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Cron endpoint is not configured"))
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid cron credential"))
			return
		}

		c.Next()
	}
}
