package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
	repo "github.com/aurora-mobile/aurora-auth/internal/domain/repository"
	"github.com/aurora-mobile/aurora-auth/internal/infrastructure/postgres"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService manages the profile rows that back client entitlement
// state. Writes are re-indexed to Elasticsearch when a client is wired.
type ProfileService struct {
	Profiles        repo.ProfileRepository
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESProfilesIndex string
}

func (s *ProfileService) Fetch(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Profiles.GetByID(userID)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *ProfileService) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	if u.Subscription == "" {
		u.Subscription = entity.TierFree
	}
	if !u.Subscription.Valid() {
		return nil, errors.New("unknown subscription tier")
	}
	if err := s.Profiles.Create(u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("create profile failed")
		return nil, err
	}
	s.indexProfile(ctx, u)
	return u, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, patch repo.ProfilePatch) (*entity.User, error) {
	if patch.Tier != nil && !patch.Tier.Valid() {
		return nil, errors.New("unknown subscription tier")
	}
	u, err := s.Profiles.Update(userID, patch)
	if errors.Is(err, postgres.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("update profile failed")
		return nil, err
	}
	s.indexProfile(ctx, u)
	return u, nil
}

func (s *ProfileService) indexProfile(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESProfilesIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           u.ID,
		"email":        u.Email,
		"full_name":    u.FullName,
		"subscription": string(u.Subscription),
		"created_at":   u.CreatedAt.Format(time.RFC3339Nano),
	}
	if u.SubscriptionExpiry != nil {
		doc["subscription_expiry"] = u.SubscriptionExpiry.Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESProfilesIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}
