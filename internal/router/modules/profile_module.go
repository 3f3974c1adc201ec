package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aurora-mobile/aurora-auth/internal/container"
	handlers "github.com/aurora-mobile/aurora-auth/internal/interface/http"
	"github.com/aurora-mobile/aurora-auth/internal/interface/middleware"
)

// ProfileModule wires the trusted profile surface. Every route requires the
// service API key.

type ProfileModule struct {
	Handler *handlers.ProfileHandler
	APIKey  string
}

func NewProfileModule(h *handlers.ProfileHandler, apiKey string) *ProfileModule {
	return &ProfileModule{Handler: h, APIKey: apiKey}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	profiles := rg.Group("/profiles")
	profiles.Use(
		middleware.APIKey(m.APIKey),
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
	)
	{
		profiles.GET("/:id", m.Handler.Get)
		profiles.POST("", m.Handler.Create)
		profiles.PATCH("/:id", m.Handler.Update)
	}
}
