package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gardenbook/api/internal/cache"
	"gardenbook/api/internal/config"
	"gardenbook/api/internal/models"
	"gardenbook/api/internal/security"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	ContextUserKey   = "current_user"
	ContextClaimsKey = "access_claims"
)

// UserLoader is the slice of the user store the gates need.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth is the required gate: the access token comes from the accessToken
// cookie or an Authorization: Bearer header, and the user is always
// re-checked against the store (through the cache) so deleted accounts are
// rejected even with a valid signature.
func Auth(cfg *config.AppConfig, users UserLoader, userCache *cache.UserCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, ok := authenticate(c, cfg, users, userCache)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, *claims)

		c.Next()
	}
}

// OptionalAuth attaches identity when a valid token is present and proceeds
// anonymously otherwise.
func OptionalAuth(cfg *config.AppConfig, users UserLoader, userCache *cache.UserCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, claims, ok := authenticate(c, cfg, users, userCache); ok {
			c.Set(ContextUserKey, user)
			c.Set(ContextClaimsKey, *claims)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, cfg *config.AppConfig, users UserLoader, userCache *cache.UserCache) (models.User, *security.AccessClaims, bool) {
	tokenStr := ExtractAccessToken(c)
	if tokenStr == "" {
		return models.User{}, nil, false
	}

	claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
	if err != nil {
		return models.User{}, nil, false
	}

	if user, ok := userCache.Get(c.Request.Context(), claims.UserID); ok {
		return user, claims, true
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return models.User{}, nil, false
	}
	userCache.Set(c.Request.Context(), user)

	return user, claims, true
}

// ExtractAccessToken prefers the cookie set by the login handler and falls
// back to a bearer header for non-browser clients.
func ExtractAccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// CurrentUser returns the identity attached by Auth or OptionalAuth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(ContextUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
