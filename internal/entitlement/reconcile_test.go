package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

func TestReconcile(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name          string
		tier          entity.Tier
		expiry        *time.Time
		wantTier      entity.Tier
		wantExpiry    *time.Time
		wantWriteBack bool
	}{
		{
			name:          "free untouched",
			tier:          entity.TierFree,
			wantTier:      entity.TierFree,
			wantWriteBack: false,
		},
		{
			name:          "free with leftover expiry untouched",
			tier:          entity.TierFree,
			expiry:        &tomorrow,
			wantTier:      entity.TierFree,
			wantExpiry:    &tomorrow,
			wantWriteBack: false,
		},
		{
			name:          "premium in the future kept",
			tier:          entity.TierPremium,
			expiry:        &tomorrow,
			wantTier:      entity.TierPremium,
			wantExpiry:    &tomorrow,
			wantWriteBack: false,
		},
		{
			name:          "premium expired downgrades",
			tier:          entity.TierPremium,
			expiry:        &yesterday,
			wantTier:      entity.TierFree,
			wantExpiry:    nil,
			wantWriteBack: true,
		},
		{
			name:          "premium expiring exactly now downgrades",
			tier:          entity.TierPremium,
			expiry:        &now,
			wantTier:      entity.TierFree,
			wantExpiry:    nil,
			wantWriteBack: true,
		},
		{
			name:          "premium without expiry downgrades",
			tier:          entity.TierPremium,
			expiry:        nil,
			wantTier:      entity.TierFree,
			wantExpiry:    nil,
			wantWriteBack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := entity.User{
				ID:                 "u-1",
				Email:              "a@x.com",
				FullName:           "Ann",
				Subscription:       tt.tier,
				SubscriptionExpiry: tt.expiry,
			}
			out, writeBack := Reconcile(in, now)

			assert.Equal(t, tt.wantTier, out.Subscription)
			assert.Equal(t, tt.wantWriteBack, writeBack)
			if tt.wantExpiry == nil {
				assert.Nil(t, out.SubscriptionExpiry)
			} else {
				require.NotNil(t, out.SubscriptionExpiry)
				assert.True(t, tt.wantExpiry.Equal(*out.SubscriptionExpiry))
			}
			// identity fields never change
			assert.Equal(t, in.ID, out.ID)
			assert.Equal(t, in.Email, out.Email)
		})
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	in := entity.User{Subscription: entity.TierPremium, SubscriptionExpiry: &past}

	_, writeBack := Reconcile(in, now)

	require.True(t, writeBack)
	assert.Equal(t, entity.TierPremium, in.Subscription)
	assert.NotNil(t, in.SubscriptionExpiry)
}
