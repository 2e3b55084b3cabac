package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/constants"
	apierrors "github.com/yukikurage/teamtasks-api/internal/errors"
	"github.com/yukikurage/teamtasks-api/internal/middleware"
	"github.com/yukikurage/teamtasks-api/internal/services"
)

// respondError maps service errors onto API error responses. Unknown errors
// are attached to the context for the request logger and reported as 500.
func respondError(c *gin.Context, err error) {
	switch {
	// 404
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrSubtaskNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectMemberNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrParentTaskNotFound):
		apierrors.NotFound(c, err.Error())

	// 401
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserInactive):
		apierrors.InvalidCredentials(c, err.Error())

	// 403
	case errors.Is(err, services.ErrTaskPermissionDenied),
		errors.Is(err, services.ErrNotTaskOwner),
		errors.Is(err, services.ErrProjectForbidden),
		errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrInvalidManagedBy):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAdminRequired):
		apierrors.InsufficientPermissions(c, err.Error())

	// 400
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.InvalidTransition(c, err.Error())
	case errors.Is(err, services.ErrCannotRemoveOwner),
		errors.Is(err, services.ErrCannotDemoteSelf),
		errors.Is(err, services.ErrCannotDeactivateSelf),
		errors.Is(err, services.ErrManagerCycle):
		apierrors.InvalidOperation(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidRecurrence),
		errors.Is(err, services.ErrUsernameRequired),
		errors.Is(err, services.ErrNoUserIDsProvided),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrProjectOwnerNotFound),
		errors.Is(err, services.ErrInvalidMembershipRole),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrManagerNotFound),
		errors.Is(err, services.ErrNoteBodyRequired),
		errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())

	// 409
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.AlreadyExists(c, err.Error())

	// 503
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")

	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}

// bindJSON binds the request body and reports failures as 400.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.BadRequestWithDetails(c, apierrors.ErrInvalidInput.Message, err.Error())
		return false
	}
	return true
}

// currentUserID returns the authenticated user id or responds 401.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return "", false
	}
	return userID, true
}
