package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Preferences is a free-form settings bag stored as JSONB.
type Preferences map[string]any

func DefaultPreferences() Preferences {
	return Preferences{
		"theme":         "light",
		"notifications": true,
	}
}

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         UserRole
	Preferences  Preferences
	IsVerified   bool
	// ResetTokenHash and ResetExpiresAt are both set or both nil.
	ResetTokenHash []byte
	ResetExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefreshToken is one entry of a user's bounded refresh-token list.
// Only the SHA-256 hash of the signed token is ever stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}
