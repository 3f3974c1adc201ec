package entity

import (
	"time"
)

// Tier is the stored subscription level of a profile row.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	return t == TierFree || t == TierPremium
}

// User is the identity plus entitlement snapshot the rest of the app consumes.
// SubscriptionExpiry is meaningful only while Subscription is TierPremium; a
// premium row whose expiry has passed is stale and must go through
// entitlement.Reconcile before being trusted.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	Subscription       Tier       `json:"subscription"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Premium reports whether the stored tier is premium, regardless of expiry.
func (u *User) Premium() bool {
	return u.Subscription == TierPremium
}

// PendingSignup bridges a successful signup call and the verification that
// follows it. It never authorizes anything by itself.
type PendingSignup struct {
	Email  string `json:"email"`
	UserID string `json:"user_id"`
}
