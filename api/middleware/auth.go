package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/gpd-enhance/models"
)

// IdentityKey is the context key holding the authenticated API key.
const IdentityKey = "api_key"

// Auth returns API-key authentication middleware.
//
// Supports two header styles:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// If apiKeys is empty, the middleware is a no-op (open access).
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			AbortWithError(c, http.StatusUnauthorized, models.NewScrapeError(models.ErrCodeAuthorization,
				"missing API key: provide X-API-Key header or Authorization: Bearer <key>", nil))
			return
		}

		if _, valid := keySet[key]; !valid {
			AbortWithError(c, http.StatusForbidden, models.NewScrapeError(models.ErrCodeAuthorization,
				"You do not have permission to perform this action.", nil))
			return
		}

		c.Set(IdentityKey, key)
		c.Next()
	}
}

// Identity returns the authenticated API key, or "" when auth is off.
func Identity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}

// extractAPIKey tries X-API-Key first, then Authorization: Bearer.
func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
