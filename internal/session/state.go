package session

import (
	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

// Status is the lifecycle position of the process-wide auth state.
type Status int

const (
	// StatusUnauthenticated means no signed-in user.
	StatusUnauthenticated Status = iota
	// StatusRestoring is the transient state while a persisted session is
	// being validated at process start.
	StatusRestoring
	// StatusPendingVerification sits between a successful signup and the
	// one-time-code verification that completes it.
	StatusPendingVerification
	// StatusAuthenticated means a user is signed in.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusRestoring:
		return "restoring"
	case StatusPendingVerification:
		return "pending_verification"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is the snapshot published to consumers after every transition. User
// is set only in StatusAuthenticated; PendingEmail only in
// StatusPendingVerification. Loading is true exactly while a lifecycle
// operation is in flight.
type State struct {
	Status       Status
	User         *entity.User
	PendingEmail string
	Loading      bool
}

// SignedIn reports whether a user is present.
func (s State) SignedIn() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}
