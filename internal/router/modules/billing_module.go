package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aurora-mobile/aurora-auth/internal/container"
	handlers "github.com/aurora-mobile/aurora-auth/internal/interface/http"
	"github.com/aurora-mobile/aurora-auth/internal/interface/middleware"
	"github.com/aurora-mobile/aurora-auth/pkg/helpers"
)

// BillingModule wires checkout session creation for authenticated users.

type BillingModule struct {
	Handler *handlers.BillingHandler
	JWT     *helpers.JWTManager
}

func NewBillingModule(h *handlers.BillingHandler, jwt *helpers.JWTManager) *BillingModule {
	return &BillingModule{Handler: h, JWT: jwt}
}

func (m *BillingModule) Register(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	billing.Use(
		middleware.Auth(container.GetRedis(), m.JWT),
		middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		billing.POST("/checkout", m.Handler.Checkout)
	}
}
