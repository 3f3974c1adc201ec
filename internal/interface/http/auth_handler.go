package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/application"
	"github.com/aurora-mobile/aurora-auth/pkg/response"
	"github.com/aurora-mobile/aurora-auth/pkg/validation"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Profiles *application.ProfileService
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, profiles *application.ProfileService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Profiles: profiles, Logger: logger}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	FullName string `json:"full_name" binding:"required"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pending, err := h.Auth.SignUp(c.Request.Context(), strings.ToLower(req.Email), req.Password, req.FullName)
	if errors.Is(err, application.ErrEmailTaken) {
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "signup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"email":   pending.Email,
		"user_id": pending.UserID,
	}, "verification code sent", nil)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Auth.VerifyCode(c.Request.Context(), strings.ToLower(req.Email), req.Code)
	if errors.Is(err, application.ErrInvalidCode) {
		response.Error[any](c, http.StatusUnauthorized, "invalid verification code", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "email verified", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), strings.ToLower(req.Email), req.Password)
	if errors.Is(err, application.ErrInvalidCredentials) {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

// Session returns the profile bound to the authenticated session. The Auth
// middleware has already validated the token.
func (h *AuthHandler) Session(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Profiles.Fetch(c.Request.Context(), uid)
	if errors.Is(err, application.ErrProfileNotFound) {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "session lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "session", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token != "" {
		_ = h.Auth.Logout(c.Request.Context(), token)
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
