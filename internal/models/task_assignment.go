package models

import (
	"time"
)

type TaskAssignment struct {
	TaskID    string    `gorm:"type:varchar(36);primarykey" json:"task_id"`
	UserID    string    `gorm:"type:varchar(36);primarykey" json:"user_id"`
	UserName  string    `gorm:"type:varchar(255)" json:"user_name"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
