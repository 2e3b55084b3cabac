package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"gorm.io/gorm"
)

var ErrSubtaskNotFound = errors.New("subtask not found")

// SubtaskService manages the checklist items of a task. The parent's
// subtask counters are maintained best effort after each change.
type SubtaskService struct {
	subtaskRepo repository.SubtaskRepository
	taskRepo    repository.TaskRepository
	access      *access.Resolver
	notifier    *notify.Dispatcher
	effects     *effects.Runner
	clock       clock.Clock
}

func NewSubtaskService(
	subtaskRepo repository.SubtaskRepository,
	taskRepo repository.TaskRepository,
	resolver *access.Resolver,
	notifier *notify.Dispatcher,
	runner *effects.Runner,
	c clock.Clock,
) *SubtaskService {
	if c == nil {
		c = clock.System{}
	}
	if runner == nil {
		runner = effects.NewRunner(slog.Default())
	}
	return &SubtaskService{
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		access:      resolver,
		notifier:    notifier,
		effects:     runner,
		clock:       c,
	}
}

// ListSubtasks lists the subtasks of a task the actor can view.
func (s *SubtaskService) ListSubtasks(ctx context.Context, actorID, taskID string) ([]models.Subtask, error) {
	if _, err := s.parent(ctx, actorID, taskID, access.ModeView); err != nil {
		return nil, err
	}

	subtasks, err := s.subtaskRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}

// CreateSubtask adds a subtask to a task the actor can edit.
func (s *SubtaskService) CreateSubtask(ctx context.Context, actorID, taskID, title string) (*models.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task, err := s.parent(ctx, actorID, taskID, access.ModeEdit)
	if err != nil {
		return nil, err
	}

	subtask := &models.Subtask{
		TaskID:    task.ID,
		Title:     title,
		CreatedBy: actorID,
	}
	if err := s.subtaskRepo.Create(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	s.effects.Run(ctx, task.ID, s.counterEffect(task.ID, 1, 0))

	return subtask, nil
}

// CompleteSubtask sets the completed flag together with completed_at and
// completed_by. Asking for the current state changes nothing.
func (s *SubtaskService) CompleteSubtask(ctx context.Context, actorID, subtaskID string, completed bool) (*models.Subtask, error) {
	subtask, err := s.findSubtask(ctx, subtaskID)
	if err != nil {
		return nil, err
	}

	task, err := s.parent(ctx, actorID, subtask.TaskID, access.ModeEdit)
	if err != nil {
		return nil, err
	}

	if subtask.Completed == completed {
		return subtask, nil
	}

	subtask.Completed = completed
	if completed {
		now := s.clock.Now()
		by := actorID
		subtask.CompletedAt = &now
		subtask.CompletedBy = &by
	} else {
		subtask.CompletedAt = nil
		subtask.CompletedBy = nil
	}

	if err := s.subtaskRepo.Update(ctx, subtask); err != nil {
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	delta := 1
	if !completed {
		delta = -1
	}
	followUps := []effects.Effect{s.counterEffect(task.ID, 0, delta)}
	if completed {
		payload := map[string]any{"subtask_id": subtask.ID, "subtask_title": subtask.Title}
		followUps = append(followUps, effects.Effect{
			Name: "notify " + string(models.NotificationSubtaskCompleted),
			Run: func(ctx context.Context) error {
				s.notifier.NotifyTaskEventWithPayload(ctx, task, models.NotificationSubtaskCompleted, actorID, payload)
				return nil
			},
		})
	}
	s.effects.Run(ctx, task.ID, followUps...)

	return subtask, nil
}

// DeleteSubtask removes a subtask from a task the actor can edit.
func (s *SubtaskService) DeleteSubtask(ctx context.Context, actorID, subtaskID string) error {
	subtask, err := s.findSubtask(ctx, subtaskID)
	if err != nil {
		return err
	}

	task, err := s.parent(ctx, actorID, subtask.TaskID, access.ModeEdit)
	if err != nil {
		return err
	}

	if err := s.subtaskRepo.Delete(ctx, subtask.ID); err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}

	completedDelta := 0
	if subtask.Completed {
		completedDelta = -1
	}
	s.effects.Run(ctx, task.ID, s.counterEffect(task.ID, -1, completedDelta))

	return nil
}

func (s *SubtaskService) counterEffect(taskID string, totalDelta, completedDelta int) effects.Effect {
	return effects.Effect{
		Name: "adjust subtask counters",
		Run: func(ctx context.Context) error {
			return s.taskRepo.AdjustSubtaskCounters(ctx, taskID, totalDelta, completedDelta)
		},
	}
}

// parent loads the parent task, reporting an invisible task as not found and a
// visible but read-only one as forbidden.
func (s *SubtaskService) parent(ctx context.Context, actorID, taskID string, mode access.Mode) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !s.access.CanView(ctx, actorID, task) {
		return nil, ErrTaskNotFound
	}
	if mode == access.ModeEdit && !s.access.CanEdit(ctx, actorID, task) {
		return nil, ErrTaskPermissionDenied
	}
	return task, nil
}

func (s *SubtaskService) findSubtask(ctx context.Context, subtaskID string) (*models.Subtask, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, subtaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, fmt.Errorf("failed to find subtask: %w", err)
	}
	return subtask, nil
}
