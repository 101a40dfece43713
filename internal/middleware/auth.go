package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/magnate-systems/picking-api/internal/config"
	apierrors "github.com/magnate-systems/picking-api/internal/errors"
	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/utils"
)

const contextKeyCurrentUser = "current_user"

// RequireAuth validates the bearer token and loads the user into context.
func RequireAuth(cfg *config.Config, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Token subjects are validated against the user table so revoked
		// accounts lose access immediately.
		user, err := userRepo.FindByID(userID)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(contextKeyCurrentUser, user)
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(contextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
