package repository

import (
	"time"

	"github.com/aurora-mobile/aurora-auth/internal/domain/entity"
)

// PrincipalRepository defines database operations on authentication principals.
type PrincipalRepository interface {
	Create(p *entity.Principal) error
	GetByID(id string) (*entity.Principal, error)
	GetByEmail(email string) (*entity.Principal, error)
	SetVerified(id string) error
}

// ProfilePatch carries partial profile updates. Nil fields are left untouched;
// ClearExpiry nulls the expiry column regardless of Expiry.
type ProfilePatch struct {
	FullName    *string
	Tier        *entity.Tier
	Expiry      *time.Time
	ClearExpiry bool
}

// ProfileRepository defines database operations on profile rows.
type ProfileRepository interface {
	Create(u *entity.User) error
	GetByID(userID string) (*entity.User, error)
	Update(userID string, patch ProfilePatch) (*entity.User, error)
}
