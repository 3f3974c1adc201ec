package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-mobile/aurora-auth/internal/application"
	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	repo "github.com/aurora-mobile/aurora-auth/internal/domain/repository"
	"github.com/aurora-mobile/aurora-auth/internal/infrastructure/postgres"
	"github.com/aurora-mobile/aurora-auth/pkg/validation"
)

type memProfileRepo struct {
	profiles map[string]*entity.User
}

func (f *memProfileRepo) Create(u *entity.User) error {
	u.CreatedAt = time.Now().UTC()
	cp := *u
	f.profiles[u.ID] = &cp
	return nil
}

func (f *memProfileRepo) GetByID(userID string) (*entity.User, error) {
	u, ok := f.profiles[userID]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *memProfileRepo) Update(userID string, patch repo.ProfilePatch) (*entity.User, error) {
	u, ok := f.profiles[userID]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Tier != nil {
		u.Subscription = *patch.Tier
	}
	if patch.ClearExpiry {
		u.SubscriptionExpiry = nil
	} else if patch.Expiry != nil {
		t := *patch.Expiry
		u.SubscriptionExpiry = &t
	}
	cp := *u
	return &cp, nil
}

type profileEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    entity.User `json:"data"`
}

func setupProfileRouter(fr *memProfileRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := &application.ProfileService{Profiles: fr, Logger: logger}
	h := NewProfileHandler(svc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/profiles/:id", h.Get)
	api.POST("/profiles", h.Create)
	api.PATCH("/profiles/:id", h.Update)
	return r
}

func TestProfileGet(t *testing.T) {
	fr := &memProfileRepo{profiles: map[string]*entity.User{
		"11111111-1111-1111-1111-111111111111": {
			ID:           "11111111-1111-1111-1111-111111111111",
			Email:        "a@x.com",
			FullName:     "Ann",
			Subscription: entity.TierFree,
		},
	}}
	r := setupProfileRouter(fr)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profiles/11111111-1111-1111-1111-111111111111", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var env profileEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "a@x.com", env.Data.Email)
	assert.Equal(t, entity.TierFree, env.Data.Subscription)
}

func TestProfileGetNotFound(t *testing.T) {
	r := setupProfileRouter(&memProfileRepo{profiles: map[string]*entity.User{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profiles/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileCreate(t *testing.T) {
	fr := &memProfileRepo{profiles: map[string]*entity.User{}}
	r := setupProfileRouter(fr)

	body := `{"id":"11111111-1111-1111-1111-111111111111","email":"a@x.com","full_name":"Ann"}`
	req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var env profileEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, entity.TierFree, env.Data.Subscription)
	assert.Contains(t, fr.profiles, "11111111-1111-1111-1111-111111111111")
}

func TestProfileCreateValidation(t *testing.T) {
	r := setupProfileRouter(&memProfileRepo{profiles: map[string]*entity.User{}})

	tests := []string{
		`{"email":"a@x.com","full_name":"Ann"}`,
		`{"id":"not-a-uuid","email":"a@x.com","full_name":"Ann"}`,
		`{"id":"11111111-1111-1111-1111-111111111111","email":"bad","full_name":"Ann"}`,
		`{"id":"11111111-1111-1111-1111-111111111111","email":"a@x.com","full_name":"Ann","subscription":"gold"}`,
	}
	for _, body := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestProfilePatchDowngrade(t *testing.T) {
	expiry := time.Now().Add(-time.Hour).UTC()
	fr := &memProfileRepo{profiles: map[string]*entity.User{
		"u1": {ID: "u1", Email: "a@x.com", Subscription: entity.TierPremium, SubscriptionExpiry: &expiry},
	}}
	r := setupProfileRouter(fr)

	body := `{"subscription":"free","clear_expiry":true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env profileEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, entity.TierFree, env.Data.Subscription)
	assert.Nil(t, env.Data.SubscriptionExpiry)
}

func TestProfilePatchUpgrade(t *testing.T) {
	fr := &memProfileRepo{profiles: map[string]*entity.User{
		"u1": {ID: "u1", Email: "a@x.com", Subscription: entity.TierFree},
	}}
	r := setupProfileRouter(fr)

	expiry := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"subscription":"premium","subscription_expiry":"` + expiry + `"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env profileEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, entity.TierPremium, env.Data.Subscription)
	require.NotNil(t, env.Data.SubscriptionExpiry)
}

func TestProfilePatchBadExpiry(t *testing.T) {
	fr := &memProfileRepo{profiles: map[string]*entity.User{"u1": {ID: "u1"}}}
	r := setupProfileRouter(fr)

	body := `{"subscription_expiry":"tomorrow"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/profiles/u1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
