package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/application"
	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	repo "github.com/aurora-mobile/aurora-auth/internal/domain/repository"
	"github.com/aurora-mobile/aurora-auth/pkg/response"
	"github.com/aurora-mobile/aurora-auth/pkg/validation"
)

// ProfileHandler serves the trusted profile surface used by clients holding
// the service API key.
type ProfileHandler struct {
	Profiles *application.ProfileService
	Logger   *logrus.Logger
}

func NewProfileHandler(profiles *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Logger: logger}
}

type createProfileRequest struct {
	ID                 string `json:"id" binding:"required,uuid"`
	Email              string `json:"email" binding:"required,email"`
	FullName           string `json:"full_name" binding:"required"`
	Subscription       string `json:"subscription" binding:"omitempty,oneof=free premium"`
	SubscriptionExpiry string `json:"subscription_expiry" binding:"omitempty"`
}

type updateProfileRequest struct {
	FullName           *string `json:"full_name"`
	Subscription       *string `json:"subscription" binding:"omitempty,oneof=free premium"`
	SubscriptionExpiry *string `json:"subscription_expiry"`
	ClearExpiry        bool    `json:"clear_expiry"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	u, err := h.Profiles.Fetch(c.Request.Context(), c.Param("id"))
	if errors.Is(err, application.ErrProfileNotFound) {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "profile lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u := &entity.User{
		ID:           req.ID,
		Email:        req.Email,
		FullName:     req.FullName,
		Subscription: entity.Tier(req.Subscription),
	}
	if req.SubscriptionExpiry != "" {
		t, err := time.Parse(time.RFC3339, req.SubscriptionExpiry)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"subscription_expiry": "must be RFC3339"})
			return
		}
		u.SubscriptionExpiry = &t
	}

	created, err := h.Profiles.Create(c.Request.Context(), u)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "create profile failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, created, "profile created", nil)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	patch := repo.ProfilePatch{FullName: req.FullName, ClearExpiry: req.ClearExpiry}
	if req.Subscription != nil {
		tier := entity.Tier(*req.Subscription)
		patch.Tier = &tier
	}
	if req.SubscriptionExpiry != nil {
		t, err := time.Parse(time.RFC3339, *req.SubscriptionExpiry)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"subscription_expiry": "must be RFC3339"})
			return
		}
		patch.Expiry = &t
	}

	u, err := h.Profiles.Update(c.Request.Context(), c.Param("id"), patch)
	if errors.Is(err, application.ErrProfileNotFound) {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "update profile failed", nil)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}
