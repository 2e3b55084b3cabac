package repository

import (
	"context"
	"time"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task together with its assignments
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its assignments
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update saves the task's own columns; assignments are left untouched
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task and removes its assignments
	Delete(ctx context.Context, id string) error

	// AssignUsers adds assignments, ignoring ones that already exist
	AssignUsers(ctx context.Context, taskID string, assignments []models.TaskAssignment) error

	// UnassignUsers removes user assignments from a task
	UnassignUsers(ctx context.Context, taskID string, userIDs []string) error

	// ReplaceAssignees swaps every assignment of the task for the given ones
	ReplaceAssignees(ctx context.Context, taskID string, assignments []models.TaskAssignment) error

	// FindSuccessor finds the task generated from a completed recurring task
	FindSuccessor(ctx context.Context, parentRecurringTaskID string) (*models.Task, error)

	// AdjustSubtaskCounters adds the deltas to the denormalised subtask counters
	AdjustSubtaskCounters(ctx context.Context, taskID string, totalDelta, completedDelta int) error
}

// Visibility is the set of predicates that make a task visible to a viewer.
// A task matches when any one of them holds.
type Visibility struct {
	All            bool
	UserID         string
	ProjectIDs     []string
	SubordinateIDs []string
}

type TaskSort string

const (
	SortByCreatedAt TaskSort = "created_at"
	SortByDueDate   TaskSort = "due_date"
	SortByPriority  TaskSort = "priority"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Visibility      Visibility
	ProjectID       *string
	Status          *models.TaskStatus
	CreatorID       *string
	AssignedUserID  *string
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	IncludeArchived bool
	Sort            TaskSort
	Page            int
	PageSize        int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project and its owner membership in one transaction
	Create(ctx context.Context, project *models.Project, owner *models.Membership) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id string) (*models.Project, error)

	// Update updates a project
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project, its memberships and its tasks
	Delete(ctx context.Context, id string) error

	// UpsertMember adds a member or overwrites the role of an existing one
	UpsertMember(ctx context.Context, member *models.Membership) error

	// RemoveMember removes a member from a project
	RemoveMember(ctx context.Context, projectID, userID string) error

	// FindMember finds a specific project member
	FindMember(ctx context.Context, projectID, userID string) (*models.Membership, error)

	// ListMembers lists all members of a project
	ListMembers(ctx context.Context, projectID string) ([]models.Membership, error)

	// ListMembershipsByUserID lists all memberships held by a user, with projects
	ListMembershipsByUserID(ctx context.Context, userID string) ([]models.Membership, error)

	// ListIDsByOwners lists ids of projects owned by any of the given users
	ListIDsByOwners(ctx context.Context, ownerIDs []string) ([]string, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// GetUser returns the user or nil when no such user exists
	GetUser(ctx context.Context, id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByHandleOrEmail finds a user by handle or, failing that, by email
	FindByHandleOrEmail(ctx context.Context, handle, email string) (*models.User, error)

	// List lists users with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// ListIDsByManager lists ids of users reporting to managerID
	ListIDsByManager(ctx context.Context, managerID string) ([]string, error)
}

// SubtaskRepository defines the interface for subtask data access
type SubtaskRepository interface {
	Create(ctx context.Context, subtask *models.Subtask) error
	FindByID(ctx context.Context, id string) (*models.Subtask, error)
	Update(ctx context.Context, subtask *models.Subtask) error
	Delete(ctx context.Context, id string) error
	ListByTask(ctx context.Context, taskID string) ([]models.Subtask, error)
}

// NoteRepository defines the interface for task note data access
type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	ListByTask(ctx context.Context, taskID string) ([]models.Note, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	// Create stores a notification for its recipient
	Create(ctx context.Context, notification *models.Notification) error

	// ListByRecipient lists a user's notifications, newest first
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, params utils.PaginationParams) ([]models.Notification, int64, error)

	// MarkRead marks one of the recipient's notifications as read
	MarkRead(ctx context.Context, id, recipientID string) error
}
