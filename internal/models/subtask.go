package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subtask struct {
	ID          string     `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID      string     `gorm:"type:varchar(36);not null;index" json:"task_id"`
	Title       string     `gorm:"not null" json:"title"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *string    `gorm:"type:varchar(36)" json:"completed_by"`
	CreatedBy   string     `gorm:"type:varchar(36);not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
