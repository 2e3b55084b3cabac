package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationTaskCreated          NotificationKind = "task_created"
	NotificationTaskUpdated          NotificationKind = "task_updated"
	NotificationTaskCompleted        NotificationKind = "task_completed"
	NotificationTaskAssigned         NotificationKind = "task_assigned"
	NotificationTaskUnassigned       NotificationKind = "task_unassigned"
	NotificationTaskReassigned       NotificationKind = "task_reassigned"
	NotificationRecurringTaskCreated NotificationKind = "recurring_task_created"
	NotificationNoteAdded            NotificationKind = "note_added"
	NotificationSubtaskCompleted     NotificationKind = "subtask_completed"
)

type Notification struct {
	ID          string           `gorm:"type:varchar(36);primarykey" json:"id"`
	RecipientID string           `gorm:"type:varchar(36);not null;index" json:"recipient_id"`
	Kind        NotificationKind `gorm:"type:varchar(40);not null" json:"kind"`
	TaskID      string           `gorm:"type:varchar(36);index" json:"task_id"`
	Payload     map[string]any   `gorm:"serializer:json" json:"payload"`
	Read        bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
