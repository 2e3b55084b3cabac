package repository

import (
	"context"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNoteRepository is a GORM implementation of NoteRepository
type GormNoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &GormNoteRepository{db: db}
}

func (r *GormNoteRepository) Create(ctx context.Context, note *models.Note) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error
}

func (r *GormNoteRepository) ListByTask(ctx context.Context, taskID string) ([]models.Note, error) {
	var notes []models.Note
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}
