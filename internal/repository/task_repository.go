package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/teamtasks-api/internal/database"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task and its assignments
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if len(task.Assignments) == 0 {
			return nil
		}
		for i := range task.Assignments {
			task.Assignments[i].TaskID = task.ID
		}
		return tx.Omit(clause.Associations).Create(&task.Assignments).Error
	})
}

// FindByID finds a task by ID with its assignments
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	visible, ok := r.visibilityCondition(ctx, filter.Visibility)
	if !ok {
		return []models.Task{}, 0, nil
	}
	if visible != nil {
		query = query.Where(visible)
	}

	// Apply filters
	if !filter.IncludeArchived {
		query = query.Where("tasks.is_archived = ?", false)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("EXISTS (?)", r.assignedTo(ctx, *filter.AssignedUserID))
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	switch filter.Sort {
	case SortByDueDate:
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	case SortByPriority:
		listQuery = listQuery.Order(priorityOrder())
	default:
		listQuery = listQuery.Order("tasks.created_at DESC")
	}
	listQuery = listQuery.Order("tasks.id ASC")

	var tasks []models.Task
	if err := listQuery.
		Scopes(database.Window(filter.Page, filter.PageSize)).
		Preload("Assignments").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// visibilityCondition ORs every visibility predicate into one group condition.
// It returns ok=false when nothing can be visible.
func (r *GormTaskRepository) visibilityCondition(ctx context.Context, v Visibility) (*gorm.DB, bool) {
	if v.All {
		return nil, true
	}
	if v.UserID == "" {
		return nil, false
	}

	cond := r.db.WithContext(ctx).
		Where("tasks.creator_id = ?", v.UserID).
		Or("EXISTS (?)", r.assignedTo(ctx, v.UserID))

	if len(v.ProjectIDs) > 0 {
		cond = cond.Or("tasks.project_id IN ?", v.ProjectIDs)
	}
	if len(v.SubordinateIDs) > 0 {
		cond = cond.
			Or("tasks.creator_id IN ?", v.SubordinateIDs).
			Or("EXISTS (?)", r.db.WithContext(ctx).
				Model(&models.TaskAssignment{}).
				Select("1").
				Where("task_assignments.task_id = tasks.id").
				Where("task_assignments.user_id IN ?", v.SubordinateIDs))
	}
	return cond, true
}

func (r *GormTaskRepository) assignedTo(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.TaskAssignment{}).
		Select("1").
		Where("task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID)
}

// priorityOrder sorts by bucket, converting level-only tasks with LevelToBucket.
func priorityOrder() string {
	expr := "CASE tasks.priority_level"
	for _, level := range []models.PriorityLevel{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		bucket, _ := models.LevelToBucket(level)
		expr += fmt.Sprintf(" WHEN '%s' THEN %d", level, bucket)
	}
	expr += " ELSE 0 END"
	return fmt.Sprintf("COALESCE(tasks.priority_bucket, %s) DESC", expr)
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
}

// AssignUsers assigns multiple users to a task
func (r *GormTaskRepository) AssignUsers(ctx context.Context, taskID string, assignments []models.TaskAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	for i := range assignments {
		assignments[i].TaskID = taskID
	}

	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&assignments).Error
}

// UnassignUsers removes user assignments from a task
func (r *GormTaskRepository) UnassignUsers(ctx context.Context, taskID string, userIDs []string) error {
	return r.db.WithContext(ctx).
		Where("task_id = ? AND user_id IN ?", taskID, userIDs).
		Delete(&models.TaskAssignment{}).Error
}

// ReplaceAssignees replaces all assignments of a task in one transaction
func (r *GormTaskRepository) ReplaceAssignees(ctx context.Context, taskID string, assignments []models.TaskAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if len(assignments) == 0 {
			return nil
		}
		for i := range assignments {
			assignments[i].TaskID = taskID
		}
		return tx.Omit(clause.Associations).Create(&assignments).Error
	})
}

// FindSuccessor finds the successor generated from a recurring task, with its assignments
func (r *GormTaskRepository) FindSuccessor(ctx context.Context, parentRecurringTaskID string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("parent_recurring_task_id = ?", parentRecurringTaskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// AdjustSubtaskCounters increments (or decrements) the subtask counters in place
func (r *GormTaskRepository) AdjustSubtaskCounters(ctx context.Context, taskID string, totalDelta, completedDelta int) error {
	updates := map[string]any{}
	if totalDelta != 0 {
		updates["subtask_count"] = gorm.Expr("subtask_count + ?", totalDelta)
	}
	if completedDelta != 0 {
		updates["subtask_completed_count"] = gorm.Expr("subtask_completed_count + ?", completedDelta)
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", taskID).
		UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
