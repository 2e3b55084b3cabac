package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "to_do"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusDone       TaskStatus = "done"
)

// taskTransitions lists the statuses reachable from each status. Done is terminal:
// a recurring successor is a new task, not a re-entry.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone},
	TaskStatusInProgress: {TaskStatusTodo, TaskStatusReview, TaskStatusBlocked, TaskStatusDone},
	TaskStatusReview:     {TaskStatusInProgress, TaskStatusDone},
	TaskStatusBlocked:    {TaskStatusTodo, TaskStatusInProgress},
	TaskStatusDone:       {},
}

func (s TaskStatus) IsValid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying in the same status is always allowed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Task struct {
	ID                    string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Title                 string         `gorm:"not null" json:"title"`
	Description           string         `gorm:"type:text" json:"description"`
	Status                TaskStatus     `gorm:"type:varchar(20);not null;default:'to_do';index" json:"status"`
	PriorityBucket        *int           `json:"priority_bucket"`
	PriorityLevel         *PriorityLevel `gorm:"type:varchar(10)" json:"priority"`
	CreatorID             string         `gorm:"type:varchar(36);not null;index" json:"creator_id"`
	CreatorName           string         `gorm:"type:varchar(255)" json:"creator_name"`
	ProjectID             *string        `gorm:"type:varchar(36);index" json:"project_id"`
	ParentTaskID          *string        `gorm:"type:varchar(36);index" json:"parent_task_id"`
	ParentRecurringTaskID *string        `gorm:"type:varchar(36);index" json:"parent_recurring_task_id"`
	Labels                []string       `gorm:"serializer:json" json:"labels"`
	DueDate               *time.Time     `gorm:"index" json:"due_date"`
	Recurrence            Recurrence     `gorm:"embedded;embeddedPrefix:recurrence_" json:"recurrence"`
	IsArchived            bool           `gorm:"not null;default:false;index" json:"is_archived"`
	ArchivedAt            *time.Time     `json:"archived_at"`
	CompletedAt           *time.Time     `json:"completed_at"`
	SubtaskCount          int            `gorm:"not null;default:0" json:"subtask_count"`
	SubtaskCompletedCount int            `gorm:"not null;default:0" json:"subtask_completed_count"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AssigneeIDs returns the ids of all current assignees.
func (t *Task) AssigneeIDs() []string {
	ids := make([]string, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		ids = append(ids, a.UserID)
	}
	return ids
}

// IsAssignedTo reports whether userID is one of the task's assignees.
func (t *Task) IsAssignedTo(userID string) bool {
	for _, a := range t.Assignments {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the task that does not share slices or
// pointers with the original.
func (t *Task) Snapshot() *Task {
	c := *t
	c.Labels = append([]string(nil), t.Labels...)
	c.Assignments = append([]TaskAssignment(nil), t.Assignments...)
	c.Recurrence = t.Recurrence.Clone()
	c.PriorityBucket = clonePtr(t.PriorityBucket)
	c.PriorityLevel = clonePtr(t.PriorityLevel)
	c.ProjectID = clonePtr(t.ProjectID)
	c.ParentTaskID = clonePtr(t.ParentTaskID)
	c.ParentRecurringTaskID = clonePtr(t.ParentRecurringTaskID)
	c.DueDate = clonePtr(t.DueDate)
	c.ArchivedAt = clonePtr(t.ArchivedAt)
	c.CompletedAt = clonePtr(t.CompletedAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
