// Package recurrence materialises the next occurrence of a completed recurring task.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/gorm"
)

var ErrNoDueDate = errors.New("recurring task has no due date to advance from")

// Store is the persistence the engine needs.
type Store interface {
	Create(ctx context.Context, task *models.Task) error
	FindSuccessor(ctx context.Context, parentRecurringTaskID string) (*models.Task, error)
}

type Engine struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

func NewEngine(store Store, c clock.Clock, logger *slog.Logger) *Engine {
	if c == nil {
		c = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, clock: c, logger: logger}
}

// NextOccurrence builds, without persisting, the successor of completed.
// It returns nil and no error when the series is disabled or has ended.
func (e *Engine) NextOccurrence(completed *models.Task) (*models.Task, error) {
	rec := completed.Recurrence
	if !rec.Enabled {
		return nil, nil
	}
	now := e.clock.Now().UTC()
	if rec.Expired(now) {
		return nil, nil
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	base := rec.OriginalDueDate
	if base == nil {
		base = completed.DueDate
	}
	if base == nil {
		return nil, ErrNoDueDate
	}

	nextDue, err := rec.Advance(*base)
	if err != nil {
		return nil, fmt.Errorf("advance due date: %w", err)
	}
	following, err := rec.Advance(nextDue)
	if err != nil {
		return nil, fmt.Errorf("advance next occurrence: %w", err)
	}

	successor := completed.Snapshot()
	successor.ID = ""
	successor.Status = models.TaskStatusTodo
	successor.DueDate = &nextDue
	successor.Recurrence.OriginalDueDate = &nextDue
	successor.Recurrence.NextOccurrence = &following
	parentID := completed.ID
	successor.ParentRecurringTaskID = &parentID
	successor.IsArchived = false
	successor.ArchivedAt = nil
	successor.CompletedAt = nil
	successor.SubtaskCount = 0
	successor.SubtaskCompletedCount = 0
	successor.CreatedAt = now
	successor.UpdatedAt = now
	successor.DeletedAt = gorm.DeletedAt{}
	for i := range successor.Assignments {
		successor.Assignments[i].TaskID = ""
		successor.Assignments[i].CreatedAt = now
	}

	return successor, nil
}

// CreateNextOccurrence persists the successor of completed and returns it.
// At most one successor exists per task; failures are logged and yield nil.
func (e *Engine) CreateNextOccurrence(ctx context.Context, completed *models.Task) *models.Task {
	if completed == nil || !completed.Recurrence.Enabled {
		return nil
	}
	log := e.logger.With("task_id", completed.ID)

	existing, err := e.store.FindSuccessor(ctx, completed.ID)
	switch {
	case err == nil:
		log.Info("recurring successor already exists", "successor_id", existing.ID)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("failed to look up recurring successor", "error", err)
		return nil
	}

	successor, err := e.NextOccurrence(completed)
	if err != nil {
		log.Warn("failed to compute next occurrence", "error", err)
		return nil
	}
	if successor == nil {
		log.Debug("recurrence ended, no successor created")
		return nil
	}

	if err := e.store.Create(ctx, successor); err != nil {
		log.Warn("failed to create next occurrence", "error", err)
		return nil
	}

	log.Info("created next occurrence", "successor_id", successor.ID, "due_date", successor.DueDate)
	return successor
}
