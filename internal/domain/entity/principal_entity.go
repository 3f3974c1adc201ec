package entity

import "time"

// Principal is an authentication identity as the provider stores it,
// independent of whether a profile row exists yet. Passwords are bcrypt
// hashes in PasswordHash.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
