// Package entitlement derives the effective subscription tier from a stored
// profile. It is pure so that expiry-boundary behavior stays testable without
// any provider or cache in the loop.
package entitlement

import (
	"time"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

// Reconcile returns the effective user for the given evaluation time and
// whether the stored row needs a downgrade write-back.
//
// A premium row with no expiry, or with an expiry at or before now, is stale:
// the effective tier becomes free and the expiry is cleared. Anything else is
// returned unchanged.
func Reconcile(u entity.User, now time.Time) (entity.User, bool) {
	if u.Subscription != entity.TierPremium {
		return u, false
	}
	if u.SubscriptionExpiry != nil && u.SubscriptionExpiry.After(now) {
		return u, false
	}
	u.Subscription = entity.TierFree
	u.SubscriptionExpiry = nil
	return u, true
}
