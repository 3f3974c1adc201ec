package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupAPIKeyRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", APIKey(key), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestAPIKeyAccepted(t *testing.T) {
	r := setupAPIKeyRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("X-Api-Key", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyRejected(t *testing.T) {
	r := setupAPIKeyRouter("secret")

	for _, key := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if key != "" {
			req.Header.Set("X-Api-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	}
}

func TestAPIKeyEmptyServerKeyDeniesAll(t *testing.T) {
	r := setupAPIKeyRouter("")

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("X-Api-Key", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
