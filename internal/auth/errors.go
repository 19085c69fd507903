package auth

import "errors"

var (
	// ErrEmailTaken indicates the address is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword rejects passwords below the account policy.
	ErrWeakPassword = errors.New("password must be 8-72 characters and mix letters with digits")
	// ErrInvalidCredentials is returned when login fails; it never tells
	// the caller whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound signals that the account could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized represents a missing or invalid access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired is returned when a refresh token is unknown,
	// expired or already consumed.
	ErrSessionExpired = errors.New("session expired")
)
