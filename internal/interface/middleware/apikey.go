package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aurora-mobile/aurora-auth/pkg/response"
)

// APIKey guards trusted service routes with a shared X-Api-Key header.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Api-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			response.Error[any](c, http.StatusForbidden, "invalid api key", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
