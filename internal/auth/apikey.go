package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderName carries the client key on regular API calls.
const HeaderName = "X-API-Key"

// queryParam carries the key on WebSocket upgrades, where browser clients
// cannot set custom headers.
const queryParam = "api_key"

// APIKeyMiddleware validates the client key from the X-API-Key header or,
// failing that, the api_key query parameter. An empty configured key
// disables authentication.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(HeaderName)
		if provided == "" {
			provided = c.Query(queryParam)
		}
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing API key",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			slog.Warn("rejected API key", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
