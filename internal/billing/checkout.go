package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrCheckoutFailed = errors.New("checkout session creation failed")

// Plan identifies a purchasable subscription plan.
type Plan string

const (
	PlanMonthly Plan = "premium_monthly"
	PlanYearly  Plan = "premium_yearly"
)

func (p Plan) Valid() bool {
	return p == PlanMonthly || p == PlanYearly
}

// AmountCents returns the plan price in USD cents.
func (p Plan) AmountCents() int {
	switch p {
	case PlanMonthly:
		return 500
	case PlanYearly:
		return 2500
	default:
		return 0
	}
}

func (p Plan) Description() string {
	switch p {
	case PlanMonthly:
		return "Aurora Premium - 1 Month Subscription"
	case PlanYearly:
		return "Aurora Premium - 1 Year Subscription"
	default:
		return ""
	}
}

// Duration returns how long the plan entitlement lasts.
func (p Plan) Duration() time.Duration {
	switch p {
	case PlanMonthly:
		return 30 * 24 * time.Hour
	case PlanYearly:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// CheckoutSession is the hosted payment page handed back to the client.
type CheckoutSession struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

// Client creates checkout sessions against the payments provider API.
type Client struct {
	APIURL     string
	APIKey     string
	SuccessURL string
	CancelURL  string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewClient(apiURL, apiKey, successURL, cancelURL string, logger *logrus.Logger) *Client {
	return &Client{
		APIURL:     apiURL,
		APIKey:     apiKey,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

type sessionRequest struct {
	Amount      int            `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	SuccessURL  string         `json:"success_url"`
	CancelURL   string         `json:"cancel_url"`
	Metadata    map[string]any `json:"metadata"`
}

// CreateSession opens a checkout session for the given user and plan.
func (c *Client) CreateSession(ctx context.Context, userID, email string, plan Plan) (*CheckoutSession, error) {
	if !plan.Valid() {
		return nil, fmt.Errorf("%w: unknown plan %q", ErrCheckoutFailed, plan)
	}

	payload := sessionRequest{
		Amount:      plan.AmountCents(),
		Currency:    "USD",
		Description: plan.Description(),
		SuccessURL:  c.SuccessURL,
		CancelURL:   c.CancelURL,
		Metadata: map[string]any{
			"subscription_type": string(plan),
			"user_id":           userID,
			"email":             email,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.WithError(err).Error("payments api unreachable")
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.Logger.WithField("status", res.StatusCode).Error("payments api rejected session")
		return nil, fmt.Errorf("%w: status %d", ErrCheckoutFailed, res.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("%w: empty checkout url", ErrCheckoutFailed)
	}
	return &session, nil
}
