package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"enrolla/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CronAuthMiddleware guards the processing trigger with a shared bearer
// secret. The comparison is constant-time.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			utils.GetLogger().Error("CRON_SECRET is not configured; rejecting trigger request")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Trigger secret is not configured"})
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			utils.GetLogger().Warn("Rejected trigger request with invalid secret", zap.String("ip", getClientIP(c)))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid bearer token"})
			return
		}
		c.Next()
	}
}
