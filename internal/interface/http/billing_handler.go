package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/billing"
	"github.com/aurora-mobile/aurora-auth/pkg/response"
	"github.com/aurora-mobile/aurora-auth/pkg/validation"
)

// BillingHandler opens hosted checkout sessions for authenticated users.
type BillingHandler struct {
	Billing *billing.Client
	Logger  *logrus.Logger
}

func NewBillingHandler(client *billing.Client, logger *logrus.Logger) *BillingHandler {
	return &BillingHandler{Billing: client, Logger: logger}
}

type checkoutRequest struct {
	Plan string `json:"plan" binding:"required,oneof=premium_monthly premium_yearly"`
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString("userID")
	email := c.GetString("userEmail")
	session, err := h.Billing.CreateSession(c.Request.Context(), uid, email, billing.Plan(req.Plan))
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("checkout session failed")
		response.Error[any](c, http.StatusBadGateway, "checkout session failed", nil)
		return
	}
	response.Success(c, http.StatusOK, session, "checkout session created", nil)
}
