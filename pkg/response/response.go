package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
)

// Context keys shared between middleware and handlers.
const (
	KeyIdentity  = "identity"
	KeyUserID    = "user_id"
	KeyProfileID = "profile_id"
	KeyProfile   = "profile"
)

// GetUserID retrieves the identity-provider subject from the context.
func GetUserID(c *gin.Context) (string, error) {
	v, exists := c.Get(KeyUserID)
	if !exists {
		return "", apperror.ErrUnauthorized
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", apperror.ErrUnauthorized
	}
	return id, nil
}

// GetIdentity retrieves the verified identity set by the auth middleware.
func GetIdentity(c *gin.Context) (*identity.Identity, error) {
	v, exists := c.Get(KeyIdentity)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}
	ident, ok := v.(*identity.Identity)
	if !ok || ident == nil {
		return nil, apperror.ErrUnauthorized
	}
	return ident, nil
}

// GetProfileID retrieves the synced profile id of the caller.
func GetProfileID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(KeyProfileID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
