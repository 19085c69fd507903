package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/maniredii/coursecms/internal/config"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "coursecms"
	tokenAudience = "coursecms-api"

	refreshTokenBytes = 48
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input cap
)

// directory abstracts account and session persistence.
type directory interface {
	CreateUser(ctx context.Context, u NewUser) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeUserTokens(ctx context.Context, userID uuid.UUID) error
}

// Service implements registration, login and session lifecycle for the
// catalog. Accounts default to the student role; addresses listed in the
// configuration are promoted to admin when they register.
type Service struct {
	store   directory
	cfg     config.AuthConfig
	nowFunc func() time.Time
}

// NewService builds an authentication service.
func NewService(store directory, cfg config.AuthConfig) *Service {
	return &Service{
		store:   store,
		cfg:     cfg,
		nowFunc: time.Now,
	}
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// accessClaims is the JWT payload issued for API access.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserClaims is the validated identity extracted from an access token.
type UserClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Register creates an account and opens its first session. The role is
// decided here: configured bootstrap addresses become admins, everyone
// else is a student.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := checkPasswordPolicy(input.Password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, NewUser{
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         s.roleFor(email),
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(ctx, user)
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, input LoginInput) (Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair is issued, so each refresh token works exactly once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if refreshToken == "" {
		return Session{}, ErrSessionExpired
	}

	userID, err := s.store.ConsumeRefreshToken(ctx, s.refreshHash(refreshToken))
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("consume refresh token: %w", err)
	}

	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}

	return s.openSession(ctx, user)
}

// Logout consumes the presented refresh token and revokes every other
// session the account holds.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrSessionExpired
	}

	userID, err := s.store.ConsumeRefreshToken(ctx, s.refreshHash(refreshToken))
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		return fmt.Errorf("consume refresh token: %w", err)
	}

	if err := s.store.RevokeUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// ValidateAccessToken checks signature, issuer, audience and expiry, and
// returns the embedded identity.
func (s *Service) ValidateAccessToken(tokenString string) (UserClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return UserClaims{}, ErrUnauthorized
	}

	var claims accessClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return []byte(s.cfg.AccessTokenSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil || !parsed.Valid {
		return UserClaims{}, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return UserClaims{}, ErrUnauthorized
	}
	if !claims.Role.Valid() {
		return UserClaims{}, ErrUnauthorized
	}

	out := UserClaims{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func (s *Service) openSession(ctx context.Context, user User) (Session, error) {
	now := s.nowFunc()

	accessToken, accessExpiry, err := s.signAccessToken(user, now)
	if err != nil {
		return Session{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		return Session{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refreshExpiry := now.Add(s.cfg.RefreshTokenTTL)

	if err := s.store.StoreRefreshToken(ctx, user.ID, s.refreshHash(refreshToken), refreshExpiry); err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}

	return Session{
		User: user.WithoutSecrets(),
		Tokens: TokenPair{
			AccessToken:        accessToken,
			AccessTokenExpiry:  accessExpiry,
			RefreshToken:       refreshToken,
			RefreshTokenExpiry: refreshExpiry,
		},
	}, nil
}

func (s *Service) signAccessToken(user User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Role:  user.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// refreshHash keys refresh tokens by HMAC so the database never holds a
// usable token.
func (s *Service) refreshHash(token string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.RefreshTokenSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) roleFor(email string) Role {
	for _, admin := range s.cfg.AdminEmails {
		if email == admin {
			return RoleAdmin
		}
	}
	return RoleStudent
}

func newRefreshToken() (string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
