package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
)

// ProfileFinder resolves the synced profile of an identity.
type ProfileFinder interface {
	FindByClerkID(ctx context.Context, clerkID string) (*entity.Profile, error)
}

type AuthMiddleware struct {
	verifier *identity.Verifier
	profiles ProfileFinder
}

func NewAuthMiddleware(verifier *identity.Verifier, profiles ProfileFinder) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		profiles: profiles,
	}
}

// RequireAuth verifies the identity token from the Authorization header or
// the "token" query parameter.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		ident, err := m.verifier.Verify(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(response.KeyIdentity, ident)
		c.Set(response.KeyUserID, ident.ID)
		c.Next()
	}
}

// RequireProfile loads the caller's profile. Banned users are refused.
func (m *AuthMiddleware) RequireProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		clerkID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		profile, err := m.profiles.FindByClerkID(c.Request.Context(), clerkID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "profile not found, sync the session first"})
				c.Abort()
				return
			}
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		if profile.IsBanned() {
			c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
			c.Abort()
			return
		}

		c.Set(response.KeyProfileID, profile.ID)
		c.Set(response.KeyProfile, profile)
		c.Next()
	}
}

// RequireAdmin checks the role carried by the identity token.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, err := response.GetIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		if !ident.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
