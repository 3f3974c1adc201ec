package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aurora-mobile/aurora-auth/internal/container"
	handlers "github.com/aurora-mobile/aurora-auth/internal/interface/http"
	"github.com/aurora-mobile/aurora-auth/internal/interface/middleware"
	"github.com/aurora-mobile/aurora-auth/pkg/helpers"
)

// AuthModule wires the auth endpoints.
// Public: POST /api/auth/signup, POST /api/auth/verify, POST /api/auth/login
// Protected: GET /api/auth/session, POST /api/auth/logout

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIP(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	auth := rg.Group("/auth")
	auth.POST("/signup", signupLimiter, m.Handler.Signup)
	auth.POST("/verify", verifyLimiter, m.Handler.Verify)
	auth.POST("/login", loginLimiter, m.Handler.Login)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		protected.GET("/session", m.Handler.Session)
	}

	// Logout reads the bearer token itself so stale tokens still get a 200.
	auth.POST("/logout", m.Handler.Logout)
}
