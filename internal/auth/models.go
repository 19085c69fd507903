package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role partitions accounts into catalog administrators and students.
// Admins manage courses, testimonials and any stored file; students own
// only what they upload.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one the system knows.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// WithoutSecrets strips fields that must never reach a response payload.
func (u User) WithoutSecrets() User {
	u.PasswordHash = ""
	return u
}

// NewUser carries the fields persisted when an account is created.
type NewUser struct {
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
}

// TokenPair bundles the access token with the refresh token that can
// replace it.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Session is the result of a successful register, login or refresh.
type Session struct {
	User   User
	Tokens TokenPair
}
