package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/constants"
	apierrors "github.com/yukikurage/teamtasks-api/internal/errors"
	"github.com/yukikurage/teamtasks-api/internal/models"
)

// UserLookup resolves the authenticated user. GetUser returns nil, nil for unknown ids.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(constants.ContextKeyUserID).(string)

		if !ok || userID == "" {
			apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.ErrUnauthorized)
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// RequireRole lets through active users holding one of roles.
func RequireRole(users UserLookup, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.ErrUnauthorized)
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(err)
			apierrors.InternalError(c, "")
			return
		}
		if user == nil || !user.Active || !slices.Contains(roles, user.Role) {
			apierrors.InsufficientPermissions(c, "This action requires a different role")
			return
		}

		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(constants.ContextKeyUserID)
	return userID, userID != ""
}
