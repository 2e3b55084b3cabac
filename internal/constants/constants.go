package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user id.
	ContextKeyUserID = "user_id"
	// ContextKeyTask holds the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"

	SessionCookieName = "task_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxAIGeneratedTasks = 20
)
