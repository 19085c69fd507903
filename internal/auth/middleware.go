package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userContextKey = "coursecmsUser"

// ContextUser is the authenticated principal carried through a request.
type ContextUser struct {
	ID    string
	Email string
	Role  Role
}

// IsAdmin reports whether the principal holds the admin role.
func (u ContextUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthMiddleware validates bearer tokens and injects the authenticated user.
func AuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := service.ValidateAccessToken(extractBearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}

		c.Set(userContextKey, contextUserFromClaims(claims))
		c.Next()
	}
}

// OptionalAuthMiddleware injects the authenticated user when a valid token
// is present but lets anonymous requests through. Public file reads use it
// so an admin's token still counts when they follow a public link.
func OptionalAuthMiddleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
			if claims, err := service.ValidateAccessToken(token); err == nil {
				c.Set(userContextKey, contextUserFromClaims(claims))
			}
		}
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the context.
func CurrentUser(c *gin.Context) (ContextUser, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return ContextUser{}, false
	}
	user, ok := value.(ContextUser)
	return user, ok
}

// RequireUser fetches the authenticated user and parses the identifier.
func RequireUser(c *gin.Context) (uuid.UUID, ContextUser, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return uuid.Nil, ContextUser{}, false
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, ContextUser{}, false
	}
	return id, user, true
}

// RequireAdmin aborts with 403 unless the authenticated user is an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privilege required"})
			return
		}
		c.Next()
	}
}

func contextUserFromClaims(claims UserClaims) ContextUser {
	return ContextUser{
		ID:    claims.UserID.String(),
		Email: claims.Email,
		Role:  claims.Role,
	}
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
