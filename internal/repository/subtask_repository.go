package repository

import (
	"context"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/gorm"
)

// GormSubtaskRepository is a GORM implementation of SubtaskRepository
type GormSubtaskRepository struct {
	db *gorm.DB
}

// NewSubtaskRepository creates a new SubtaskRepository
func NewSubtaskRepository(db *gorm.DB) SubtaskRepository {
	return &GormSubtaskRepository{db: db}
}

func (r *GormSubtaskRepository) Create(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

func (r *GormSubtaskRepository) FindByID(ctx context.Context, id string) (*models.Subtask, error) {
	var subtask models.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

// Update writes the completion fields together so the toggle is atomic
func (r *GormSubtaskRepository) Update(ctx context.Context, subtask *models.Subtask) error {
	return r.db.WithContext(ctx).Save(subtask).Error
}

func (r *GormSubtaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Subtask{}, "id = ?", id).Error
}

func (r *GormSubtaskRepository) ListByTask(ctx context.Context, taskID string) ([]models.Subtask, error) {
	var subtasks []models.Subtask
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&subtasks).Error; err != nil {
		return nil, err
	}
	return subtasks, nil
}
