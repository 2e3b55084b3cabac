package dto

import (
	"time"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// RecurrenceRequest describes a recurrence in task create and update bodies.
type RecurrenceRequest struct {
	Enabled      bool              `json:"enabled"`
	Frequency    *models.Frequency `json:"frequency"`
	IntervalDays *int              `json:"interval_days"`
	Interval     *int              `json:"interval"`
	EndDate      *Timestamp        `json:"end_date"`
}

// ToModel builds the stored descriptor. Derived dates are filled in by the task service.
func (r *RecurrenceRequest) ToModel() *models.Recurrence {
	if r == nil {
		return nil
	}
	return &models.Recurrence{
		Enabled:      r.Enabled,
		Frequency:    r.Frequency,
		IntervalDays: r.IntervalDays,
		Interval:     r.Interval,
		EndDate:      TimePtr(r.EndDate),
	}
}

type CreateTaskRequest struct {
	Title        string             `json:"title" binding:"required"`
	Description  string             `json:"description"`
	Status       models.TaskStatus  `json:"status"`
	Priority     Priority           `json:"priority"`
	DueDate      *Timestamp         `json:"due_date"`
	ProjectID    *string            `json:"project_id"`
	ParentTaskID *string            `json:"parent_task_id"`
	Labels       []string           `json:"labels"`
	AssignedTo   AssigneeRef        `json:"assigned_to"`
	Recurrence   *RecurrenceRequest `json:"recurrence"`
}

// UpdateTaskRequest is a partial update; absent keys are left unchanged and
// null clears priority and due_date.
type UpdateTaskRequest struct {
	Title       *string                  `json:"title"`
	Description *string                  `json:"description"`
	Status      *models.TaskStatus       `json:"status"`
	Priority    Field[Priority]          `json:"priority"`
	DueDate     Field[Timestamp]         `json:"due_date"`
	Labels      *[]string                `json:"labels"`
	Recurrence  Field[RecurrenceRequest] `json:"recurrence"`
}

type AssignUsersRequest struct {
	UserIDs []string `json:"user_ids" binding:"required"`
}

// ReassignRequest names exactly one new assignee.
type ReassignRequest struct {
	AssignedTo AssigneeRef `json:"assigned_to"`
}

type GenerateTasksRequest struct {
	Text      string  `json:"text" binding:"required"`
	ProjectID *string `json:"project_id"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                    string                `json:"id"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Status                models.TaskStatus     `json:"status"`
	Priority              Priority              `json:"priority"`
	PriorityBucket        *int                  `json:"priority_bucket"`
	PriorityLevel         *models.PriorityLevel `json:"priority_level"`
	CreatorID             string                `json:"creator_id"`
	CreatorName           string                `json:"creator_name"`
	ProjectID             *string               `json:"project_id"`
	ParentTaskID          *string               `json:"parent_task_id"`
	ParentRecurringTaskID *string               `json:"parent_recurring_task_id"`
	Labels                []string              `json:"labels"`
	DueDate               *time.Time            `json:"due_date"`
	Recurrence            models.Recurrence     `json:"recurrence"`
	AssignedTo            AssigneeRef           `json:"assigned_to"`
	IsArchived            bool                  `json:"is_archived"`
	ArchivedAt            *time.Time            `json:"archived_at"`
	CompletedAt           *time.Time            `json:"completed_at"`
	SubtaskCount          int                   `json:"subtask_count"`
	SubtaskCompletedCount int                   `json:"subtask_completed_count"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ReassignResponse carries the updated task and its single new assignee.
type ReassignResponse struct {
	Task       TaskDTO     `json:"task"`
	AssignedTo AssigneeRef `json:"assigned_to"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	labels := task.Labels
	if labels == nil {
		labels = []string{}
	}

	return TaskDTO{
		ID:                    task.ID,
		Title:                 task.Title,
		Description:           task.Description,
		Status:                task.Status,
		Priority:              PriorityOf(&task),
		PriorityBucket:        task.PriorityBucket,
		PriorityLevel:         task.PriorityLevel,
		CreatorID:             task.CreatorID,
		CreatorName:           task.CreatorName,
		ProjectID:             task.ProjectID,
		ParentTaskID:          task.ParentTaskID,
		ParentRecurringTaskID: task.ParentRecurringTaskID,
		Labels:                labels,
		DueDate:               task.DueDate,
		Recurrence:            task.Recurrence,
		AssignedTo:            ManyAssignees(assigneeRefs(task.Assignments)),
		IsArchived:            task.IsArchived,
		ArchivedAt:            task.ArchivedAt,
		CompletedAt:           task.CompletedAt,
		SubtaskCount:          task.SubtaskCount,
		SubtaskCompletedCount: task.SubtaskCompletedCount,
		CreatedAt:             task.CreatedAt,
		UpdatedAt:             task.UpdatedAt,
	}
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

// ToReassignResponse reports the task's single assignee after a reassign.
func ToReassignResponse(task models.Task) ReassignResponse {
	resp := ReassignResponse{Task: ToTaskDTO(task)}
	if refs := assigneeRefs(task.Assignments); len(refs) > 0 {
		resp.AssignedTo = SingleAssignee(refs[0])
	}
	return resp
}

func assigneeRefs(assignments []models.TaskAssignment) []UserRef {
	refs := make([]UserRef, 0, len(assignments))
	for _, a := range assignments {
		refs = append(refs, UserRef{ID: a.UserID, Name: a.UserName})
	}
	return refs
}
