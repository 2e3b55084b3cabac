package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/constants"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/recurrence"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskPermissionDenied   = errors.New("user does not have permission to modify this task")
	ErrNotTaskOwner           = errors.New("only the task creator, the project owner or an admin can delete this task")
	ErrNoUserIDsProvided      = errors.New("at least one user ID is required")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidStatus          = errors.New("invalid task status")
	ErrInvalidTransition      = errors.New("status transition is not allowed")
	ErrInvalidPriority        = errors.New("priority must be a bucket from 1 to 10 or one of Low, Medium, High")
	ErrInvalidRecurrence      = errors.New("invalid recurrence")
	ErrInvalidTaskAssignee    = errors.New("one or more users do not exist")
	ErrInvalidManagedBy       = errors.New("managed_by may only name yourself unless you are an admin")
	ErrParentTaskNotFound     = errors.New("parent task not found")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskDeps are the collaborators of a TaskService.
type TaskDeps struct {
	Tasks      repository.TaskRepository
	Projects   repository.ProjectRepository
	Users      repository.UserRepository
	Access     *access.Resolver
	Recurrence *recurrence.Engine
	Notifier   *notify.Dispatcher
	Effects    *effects.Runner
	Generator  TaskGenerator
	Clock      clock.Clock
	Logger     *slog.Logger
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	access      *access.Resolver
	recurrence  *recurrence.Engine
	notifier    *notify.Dispatcher
	effects     *effects.Runner
	generator   TaskGenerator
	clock       clock.Clock
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(deps TaskDeps) *TaskService {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Effects == nil {
		deps.Effects = effects.NewRunner(deps.Logger)
	}
	return &TaskService{
		taskRepo:    deps.Tasks,
		projectRepo: deps.Projects,
		userRepo:    deps.Users,
		access:      deps.Access,
		recurrence:  deps.Recurrence,
		notifier:    deps.Notifier,
		effects:     deps.Effects,
		generator:   deps.Generator,
		clock:       deps.Clock,
		logger:      deps.Logger,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ActorID         string
	ProjectID       *string
	Status          *models.TaskStatus
	AssignedToMe    bool
	ManagedBy       string
	DueToday        bool
	IncludeArchived bool
	Sort            repository.TaskSort
	Page            int
	PageSize        int
}

// CreateTaskInput represents input for creating a task. At most one of
// PriorityBucket and PriorityLevel is expected; both are stored as given.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	PriorityBucket *int
	PriorityLevel  *models.PriorityLevel
	DueDate        *time.Time
	ProjectID      *string
	ParentTaskID   *string
	Labels         []string
	AssigneeIDs    []string
	Recurrence     *models.Recurrence
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	PriorityBucket *int
	PriorityLevel  *models.PriorityLevel
	ClearPriority  bool
	DueDate        *time.Time
	ClearDueDate   bool
	Labels         *[]string
	Recurrence     *models.Recurrence
}

// ListTasks returns the tasks visible to the actor that match the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		ProjectID:       input.ProjectID,
		Status:          input.Status,
		IncludeArchived: input.IncludeArchived,
		Sort:            input.Sort,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &input.ActorID
	}
	if input.DueToday {
		startOfDay := s.clock.Now().UTC().Truncate(24 * time.Hour)
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	filter = s.access.VisibleTaskQuery(ctx, input.ActorID, filter)

	if input.ManagedBy == "" {
		tasks, total, err := s.taskRepo.List(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, total, nil
	}

	return s.listManagedBy(ctx, input, filter)
}

// listManagedBy keeps the visible tasks whose creator or an assignee reports to
// input.ManagedBy. Tasks that reference unknown users simply do not match.
func (s *TaskService) listManagedBy(ctx context.Context, input ListTasksInput, filter repository.TaskFilter) ([]models.Task, int64, error) {
	if input.ManagedBy != input.ActorID {
		actor, err := s.userRepo.GetUser(ctx, input.ActorID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to find user: %w", err)
		}
		if actor == nil || actor.Role != models.RoleAdmin {
			return nil, 0, ErrInvalidManagedBy
		}
	}

	filter.Page, filter.PageSize = 0, 0
	tasks, _, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	managed := map[string]bool{}
	isManaged := func(userID string) bool {
		if v, ok := managed[userID]; ok {
			return v
		}
		v := s.access.IsManagedBy(ctx, userID, input.ManagedBy)
		managed[userID] = v
		return v
	}

	matched := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if isManaged(task.CreatorID) {
			matched = append(matched, task)
			continue
		}
		for _, assigneeID := range task.AssigneeIDs() {
			if isManaged(assigneeID) {
				matched = append(matched, task)
				break
			}
		}
	}

	params := utils.NewPaginationParams(input.Page, input.PageSize)
	return utils.PageSlice(matched, params), int64(len(matched)), nil
}

// GetTask returns a task the actor can view
func (s *TaskService) GetTask(ctx context.Context, actorID, taskID string) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanView(ctx, actorID, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask creates a new task. Without explicit assignees the creator is assigned.
func (s *TaskService) CreateTask(ctx context.Context, actorID string, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := validatePriority(input.PriorityBucket, input.PriorityLevel); err != nil {
		return nil, err
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil && *input.ProjectID != "" {
		if _, err := s.projectRepo.FindByID(ctx, *input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		if !s.access.CanEdit(ctx, actorID, &models.Task{ProjectID: input.ProjectID}) {
			return nil, ErrProjectForbidden
		}
	} else {
		input.ProjectID = nil
	}

	if input.ParentTaskID != nil && *input.ParentTaskID != "" {
		parent, err := s.taskRepo.FindByID(ctx, *input.ParentTaskID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find parent task: %w", err)
		}
		if parent == nil || !s.access.CanView(ctx, actorID, parent) {
			return nil, ErrParentTaskNotFound
		}
	} else {
		input.ParentTaskID = nil
	}

	assigneeIDs := input.AssigneeIDs
	if len(assigneeIDs) == 0 {
		assigneeIDs = []string{actorID}
	}
	assignments, err := s.resolveAssignees(ctx, assigneeIDs)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := &models.Task{
		Title:          title,
		Description:    input.Description,
		Status:         input.Status,
		PriorityBucket: input.PriorityBucket,
		PriorityLevel:  input.PriorityLevel,
		CreatorID:      actor.ID,
		CreatorName:    actor.DisplayName(),
		ProjectID:      input.ProjectID,
		ParentTaskID:   input.ParentTaskID,
		Labels:         uniqueStrings(input.Labels),
		DueDate:        utils.UTCPtr(input.DueDate),
		Assignments:    assignments,
	}
	if task.Status == models.TaskStatusDone {
		task.CompletedAt = &now
	}
	if input.Recurrence != nil {
		rec, err := s.prepareRecurrence(*input.Recurrence, task.DueDate)
		if err != nil {
			return nil, err
		}
		task.Recurrence = rec
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.effects.Run(ctx, task.ID, s.notifyEffect(task, models.NotificationTaskCreated, actorID))

	return task, nil
}

// UpdateTask applies a patch. Completing a recurring task creates its next
// occurrence from the recurrence captured before the update; notifications
// see the updated task. Neither can fail the update.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.editableTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, ErrTitleEmpty
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if !task.Status.CanTransitionTo(*input.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, task.Status, *input.Status)
		}
	}
	if err := validatePriority(input.PriorityBucket, input.PriorityLevel); err != nil {
		return nil, err
	}

	var rec *models.Recurrence
	if input.Recurrence != nil {
		due := task.DueDate
		if input.ClearDueDate {
			due = nil
		} else if input.DueDate != nil {
			due = utils.UTCPtr(input.DueDate)
		}
		prepared, err := s.prepareRecurrence(*input.Recurrence, due)
		if err != nil {
			return nil, err
		}
		rec = &prepared
	}

	before := task.Snapshot()

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.ClearPriority {
		task.PriorityBucket = nil
		task.PriorityLevel = nil
	}
	if input.PriorityBucket != nil {
		task.PriorityBucket = input.PriorityBucket
	}
	if input.PriorityLevel != nil {
		task.PriorityLevel = input.PriorityLevel
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = utils.UTCPtr(input.DueDate)
	}
	if input.Labels != nil {
		task.Labels = uniqueStrings(*input.Labels)
	}
	if rec != nil {
		task.Recurrence = *rec
	}

	completed := before.Status != models.TaskStatusDone && task.Status == models.TaskStatusDone
	if completed {
		now := s.clock.Now()
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	var followUps []effects.Effect
	if completed && before.Recurrence.Enabled {
		before.Status = models.TaskStatusDone
		followUps = append(followUps, s.recurrenceEffect(before, actorID))
	}
	kind := models.NotificationTaskUpdated
	if completed {
		kind = models.NotificationTaskCompleted
	}
	followUps = append(followUps, s.notifyEffect(task, kind, actorID))

	s.effects.Run(ctx, task.ID, followUps...)

	return task, nil
}

// ArchiveTask sets or clears the archived flag. Any status may be archived.
func (s *TaskService) ArchiveTask(ctx context.Context, actorID, taskID string, archived bool) (*models.Task, error) {
	task, err := s.editableTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsArchived == archived {
		return task, nil
	}

	task.IsArchived = archived
	if archived {
		now := s.clock.Now()
		task.ArchivedAt = &now
	} else {
		task.ArchivedAt = nil
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}

	s.effects.Run(ctx, task.ID, s.notifyEffect(task, models.NotificationTaskUpdated, actorID))

	return task, nil
}

// ReassignTask makes newAssigneeID the only assignee. The new assignee and every
// different previous assignee are notified independently.
func (s *TaskService) ReassignTask(ctx context.Context, actorID, taskID, newAssigneeID string) (*models.Task, error) {
	if strings.TrimSpace(newAssigneeID) == "" {
		return nil, ErrNoUserIDsProvided
	}

	task, err := s.editableTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.resolveAssignees(ctx, []string{newAssigneeID})
	if err != nil {
		return nil, err
	}

	previous := task.AssigneeIDs()

	if err := s.taskRepo.ReplaceAssignees(ctx, task.ID, assignments); err != nil {
		return nil, fmt.Errorf("failed to reassign task: %w", err)
	}
	task.Assignments = assignments

	followUps := []effects.Effect{
		s.notifyUserEffect("notify new assignee", newAssigneeID, task, actorID, map[string]any{
			"previous_assignee_ids": previous,
		}),
	}
	for _, prevID := range previous {
		if prevID == newAssigneeID {
			continue
		}
		followUps = append(followUps, s.notifyUserEffect("notify previous assignee", prevID, task, actorID, map[string]any{
			"new_assignee_id": newAssigneeID,
		}))
	}
	s.effects.Run(ctx, task.ID, followUps...)

	return task, nil
}

// AssignUsers adds assignees to a task
func (s *TaskService) AssignUsers(ctx context.Context, actorID, taskID string, userIDs []string) (*models.Task, error) {
	userIDs = uniqueStrings(userIDs)
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	task, err := s.editableTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.resolveAssignees(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, id := range userIDs {
		if !task.IsAssignedTo(id) {
			added = append(added, id)
		}
	}

	if err := s.taskRepo.AssignUsers(ctx, task.ID, assignments); err != nil {
		return nil, fmt.Errorf("failed to assign users: %w", err)
	}

	updated, err := s.findTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	followUps := make([]effects.Effect, 0, len(added))
	for _, id := range added {
		followUps = append(followUps, s.notifyUserKindEffect("notify assignee", models.NotificationTaskAssigned, id, updated, actorID, nil))
	}
	s.effects.Run(ctx, updated.ID, followUps...)

	return updated, nil
}

// UnassignUsers removes user assignments from a task
func (s *TaskService) UnassignUsers(ctx context.Context, actorID, taskID string, userIDs []string) (*models.Task, error) {
	userIDs = uniqueStrings(userIDs)
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	task, err := s.editableTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, id := range userIDs {
		if task.IsAssignedTo(id) {
			removed = append(removed, id)
		}
	}

	if err := s.taskRepo.UnassignUsers(ctx, task.ID, userIDs); err != nil {
		return nil, fmt.Errorf("failed to unassign users: %w", err)
	}

	updated, err := s.findTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	followUps := make([]effects.Effect, 0, len(removed))
	for _, id := range removed {
		followUps = append(followUps, s.notifyUserKindEffect("notify unassigned", models.NotificationTaskUnassigned, id, updated, actorID, nil))
	}
	s.effects.Run(ctx, updated.ID, followUps...)

	return updated, nil
}

// DeleteTask deletes a task. Allowed for the creator, the project owner and admins.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID string) error {
	task, err := s.GetTask(ctx, actorID, taskID)
	if err != nil {
		return err
	}

	allowed := task.CreatorID == actorID
	if !allowed {
		actor, err := s.actor(ctx, actorID)
		if err != nil {
			return err
		}
		allowed = actor.Role == models.RoleAdmin
	}
	if !allowed && task.ProjectID != nil {
		project, err := s.projectRepo.FindByID(ctx, *task.ProjectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find project: %w", err)
		}
		allowed = project != nil && project.OwnerID == actorID
	}
	if !allowed {
		return ErrNotTaskOwner
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text      string
	ActorID   string
	ProjectID *string
}

// GenerateTasks uses AI to suggest tasks from text. Nothing is persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	if input.ProjectID != nil && *input.ProjectID != "" {
		if _, err := s.projectRepo.FindByID(ctx, *input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		if !s.access.CanView(ctx, input.ActorID, &models.Task{ProjectID: input.ProjectID}) {
			return nil, ErrProjectNotFound
		}
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.clock.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil {
			if aiTask.DueDate.Before(cutoff) {
				aiTask.DueDate = nil
			}
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) recurrenceEffect(completed *models.Task, actorID string) effects.Effect {
	return effects.Effect{
		Name: "create next occurrence",
		Run: func(ctx context.Context) error {
			successor := s.recurrence.CreateNextOccurrence(ctx, completed)
			if successor != nil {
				s.notifier.NotifyTaskEvent(ctx, successor, models.NotificationRecurringTaskCreated, actorID)
			}
			return nil
		},
	}
}

func (s *TaskService) notifyEffect(task *models.Task, kind models.NotificationKind, actorID string, extra ...string) effects.Effect {
	return effects.Effect{
		Name: "notify " + string(kind),
		Run: func(ctx context.Context) error {
			s.notifier.NotifyTaskEvent(ctx, task, kind, actorID, extra...)
			return nil
		},
	}
}

func (s *TaskService) notifyUserEffect(name, recipientID string, task *models.Task, actorID string, payload map[string]any) effects.Effect {
	return s.notifyUserKindEffect(name, models.NotificationTaskReassigned, recipientID, task, actorID, payload)
}

func (s *TaskService) notifyUserKindEffect(name string, kind models.NotificationKind, recipientID string, task *models.Task, actorID string, payload map[string]any) effects.Effect {
	return effects.Effect{
		Name: name,
		Run: func(ctx context.Context) error {
			s.notifier.NotifyUser(ctx, recipientID, kind, task, actorID, payload)
			return nil
		},
	}
}

// editableTask loads a task the actor may edit. A task the actor cannot even
// view is reported as not found.
func (s *TaskService) editableTask(ctx context.Context, actorID, taskID string) (*models.Task, error) {
	task, err := s.GetTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}
	if !s.access.CanEdit(ctx, actorID, task) {
		return nil, ErrTaskPermissionDenied
	}
	return task, nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) actor(ctx context.Context, actorID string) (*models.User, error) {
	user, err := s.userRepo.GetUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// resolveAssignees builds assignments for userIDs, failing if any user is unknown.
func (s *TaskService) resolveAssignees(ctx context.Context, userIDs []string) ([]models.TaskAssignment, error) {
	userIDs = uniqueStrings(userIDs)
	assignments := make([]models.TaskAssignment, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := s.userRepo.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to verify users: %w", err)
		}
		if user == nil {
			return nil, ErrInvalidTaskAssignee
		}
		assignments = append(assignments, models.TaskAssignment{
			UserID:   user.ID,
			UserName: user.DisplayName(),
		})
	}
	return assignments, nil
}

// prepareRecurrence normalises and validates a descriptor, anchoring it on due.
func (s *TaskService) prepareRecurrence(rec models.Recurrence, due *time.Time) (models.Recurrence, error) {
	rec = rec.Clone()
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return models.Recurrence{}, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	if !rec.Enabled {
		return rec, nil
	}

	rec.EndDate = utils.UTCPtr(rec.EndDate)
	rec.OriginalDueDate = utils.UTCPtr(rec.OriginalDueDate)
	if rec.OriginalDueDate == nil {
		rec.OriginalDueDate = utils.UTCPtr(due)
	}
	rec.NextOccurrence = nil
	if rec.OriginalDueDate != nil {
		next, err := rec.Advance(*rec.OriginalDueDate)
		if err != nil {
			return models.Recurrence{}, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		rec.NextOccurrence = &next
	}
	return rec, nil
}

func validatePriority(bucket *int, level *models.PriorityLevel) error {
	if bucket != nil && !models.ValidBucket(*bucket) {
		return ErrInvalidPriority
	}
	if level != nil {
		if _, err := models.LevelToBucket(*level); err != nil {
			return ErrInvalidPriority
		}
	}
	return nil
}

// uniqueStrings removes empty and duplicate values, keeping first occurrences
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
