// Package gateway defines the call surface the session manager uses to talk
// to the remote identity/profile provider, together with the error taxonomy
// every implementation maps provider failures onto.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidCode           = errors.New("invalid or expired verification code")
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrSessionCreationFailed = errors.New("failed to create session")
)

// Session is the proof of authentication returned by verification and login.
type Session struct {
	UserID      string
	AccessToken string
}

// ProfilePatch carries a partial profile update. Nil fields are untouched;
// ClearExpiry nulls the stored expiry regardless of Expiry.
type ProfilePatch struct {
	FullName    *string
	Tier        *entity.Tier
	Expiry      *time.Time
	ClearExpiry bool
}

// Gateway is the provider contract consumed by the session manager.
//
// Every call is fallible; implementations translate transport and provider
// failures into the sentinel errors above so that the manager never has to
// know a specific provider's wire format.
type Gateway interface {
	// SignUp creates a principal and triggers an out-of-band verification
	// code send. Returns the remote user id.
	SignUp(ctx context.Context, email, password, fullName string) (string, error)

	// VerifyCode exchanges a one-time code for a session. Wrong or expired
	// codes yield ErrInvalidCode.
	VerifyCode(ctx context.Context, email, code string) (*Session, error)

	// Login exchanges credentials for a session. Bad credentials yield
	// ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// SessionUser resolves a bearer token to its principal identity. Any
	// failure means the token is no longer valid.
	SessionUser(ctx context.Context, token string) (*entity.User, error)

	// FetchProfile reads a profile row; ErrProfileNotFound when absent.
	FetchProfile(ctx context.Context, userID string) (*entity.User, error)

	// CreateProfile inserts a profile row and returns the stored form.
	CreateProfile(ctx context.Context, u *entity.User) (*entity.User, error)

	// UpdateProfile applies a partial update to a profile row.
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error

	// Logout invalidates the remote session. Best effort; callers may
	// ignore the error.
	Logout(ctx context.Context, token string) error
}
