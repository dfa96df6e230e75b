package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP extracts the originating address, preferring the proxy headers
// set by the edge in front of the service over the socket peer.
func getClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		// The first entry is the original client; later hops append.
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
