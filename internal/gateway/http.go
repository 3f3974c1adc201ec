package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

// HTTP talks to the Aurora provider REST API. Auth endpoints authenticate
// with the bearer token passed per call; profile endpoints carry the service
// API key header, matching the provider's trusted-channel surface.
type HTTP struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Logger  *logrus.Logger
}

// NewHTTP builds a gateway against baseURL (e.g. "https://api.aurora.app").
func NewHTTP(baseURL, apiKey string, logger *logrus.Logger) *HTTP {
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
		Logger:  logger,
	}
}

// envelope mirrors pkg/response.APIResponse far enough to pull out the data
// payload and the human-readable message.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type sessionPayload struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

func (g *HTTP) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	body := map[string]string{"email": email, "password": password, "full_name": fullName}
	env, status, err := g.do(ctx, http.MethodPost, "/api/auth/signup", "", body)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", apiErr(ErrProviderUnavailable, env, status)
	}
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.UserID == "" {
		return "", fmt.Errorf("%w: malformed signup response", ErrProviderUnavailable)
	}
	return out.UserID, nil
}

func (g *HTTP) VerifyCode(ctx context.Context, email, code string) (*Session, error) {
	body := map[string]string{"email": email, "code": code}
	env, status, err := g.do(ctx, http.MethodPost, "/api/auth/verify", "", body)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, apiErr(ErrInvalidCode, env, status)
	default:
		return nil, apiErr(ErrProviderUnavailable, env, status)
	}
	return decodeSession(env)
}

func (g *HTTP) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	env, status, err := g.do(ctx, http.MethodPost, "/api/auth/login", "", body)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusUnauthorized:
		return nil, apiErr(ErrInvalidCredentials, env, status)
	default:
		return nil, apiErr(ErrProviderUnavailable, env, status)
	}
	return decodeSession(env)
}

func (g *HTTP) SessionUser(ctx context.Context, token string) (*entity.User, error) {
	env, status, err := g.do(ctx, http.MethodGet, "/api/auth/session", token, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiErr(ErrInvalidCredentials, env, status)
	}
	return decodeUser(env)
}

func (g *HTTP) FetchProfile(ctx context.Context, userID string) (*entity.User, error) {
	env, status, err := g.do(ctx, http.MethodGet, "/api/profiles/"+userID, "", nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
	case status == http.StatusNotFound:
		return nil, apiErr(ErrProfileNotFound, env, status)
	default:
		return nil, apiErr(ErrProviderUnavailable, env, status)
	}
	return decodeUser(env)
}

func (g *HTTP) CreateProfile(ctx context.Context, u *entity.User) (*entity.User, error) {
	env, status, err := g.do(ctx, http.MethodPost, "/api/profiles", "", u)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, apiErr(ErrProviderUnavailable, env, status)
	}
	return decodeUser(env)
}

func (g *HTTP) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error {
	body := map[string]any{}
	if patch.FullName != nil {
		body["full_name"] = *patch.FullName
	}
	if patch.Tier != nil {
		body["subscription"] = *patch.Tier
	}
	if patch.Expiry != nil {
		body["subscription_expiry"] = patch.Expiry.UTC().Format(time.RFC3339)
	}
	if patch.ClearExpiry {
		body["clear_expiry"] = true
	}
	env, status, err := g.do(ctx, http.MethodPatch, "/api/profiles/"+userID, "", body)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return apiErr(ErrProfileNotFound, env, status)
	default:
		return apiErr(ErrProviderUnavailable, env, status)
	}
}

func (g *HTTP) Logout(ctx context.Context, token string) error {
	env, status, err := g.do(ctx, http.MethodPost, "/api/auth/logout", token, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiErr(ErrProviderUnavailable, env, status)
	}
	return nil
}

// do performs one request and decodes the provider envelope. Transport-level
// failures surface as ErrProviderUnavailable; HTTP status handling is left to
// the caller since it differs per endpoint.
func (g *HTTP) do(ctx context.Context, method, path, token string, body any) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: encode request: %v", ErrProviderUnavailable, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.BaseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if g.APIKey != "" {
		req.Header.Set("X-Api-Key", g.APIKey)
	}

	res, err := g.Client.Do(req)
	if err != nil {
		if g.Logger != nil {
			g.Logger.WithError(err).WithField("path", path).Warn("provider request failed")
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	env := &envelope{}
	if err := json.NewDecoder(res.Body).Decode(env); err != nil {
		// non-envelope bodies (proxies, hard 5xx) still map onto the taxonomy
		return &envelope{}, res.StatusCode, nil
	}
	return env, res.StatusCode, nil
}

func decodeSession(env *envelope) (*Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID == "" {
		return nil, fmt.Errorf("%w: malformed session response", ErrProviderUnavailable)
	}
	if p.AccessToken == "" {
		return nil, ErrSessionCreationFailed
	}
	return &Session{UserID: p.UserID, AccessToken: p.AccessToken}, nil
}

func decodeUser(env *envelope) (*entity.User, error) {
	u := &entity.User{}
	if err := json.Unmarshal(env.Data, u); err != nil || u.ID == "" {
		return nil, fmt.Errorf("%w: malformed profile response", ErrProviderUnavailable)
	}
	return u, nil
}

func apiErr(kind error, env *envelope, status int) error {
	if env != nil && env.Message != "" {
		return fmt.Errorf("%w: %s", kind, env.Message)
	}
	return fmt.Errorf("%w: http %d", kind, status)
}

var _ Gateway = (*HTTP)(nil)
