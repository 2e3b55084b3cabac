package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/dto"
	apierrors "github.com/yukikurage/teamtasks-api/internal/errors"
	"github.com/yukikurage/teamtasks-api/internal/middleware"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/services"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Query: project_id, status, assigned_to_me, managed_by, due_today,
// include_archived, sort (created_at|due_date|priority), page, limit.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		ActorID:         userID,
		AssignedToMe:    queryBool(c, "assigned_to_me"),
		ManagedBy:       c.Query("managed_by"),
		DueToday:        queryBool(c, "due_today"),
		IncludeArchived: queryBool(c, "include_archived"),
		Page:            params.Page,
		PageSize:        params.Limit,
	}
	if projectID := c.Query("project_id"); projectID != "" {
		input.ProjectID = &projectID
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	switch sort := repository.TaskSort(c.Query("sort")); sort {
	case "", repository.SortByCreatedAt, repository.SortByDueDate, repository.SortByPriority:
		input.Sort = sort
	default:
		apierrors.BadRequest(c, "sort must be created_at, due_date or priority")
		return
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	bucket, level := req.Priority.Parts()
	task, err := h.taskService.CreateTask(c.Request.Context(), userID, services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		PriorityBucket: bucket,
		PriorityLevel:  level,
		DueDate:        dto.TimePtr(req.DueDate),
		ProjectID:      req.ProjectID,
		ParentTaskID:   req.ParentTaskID,
		Labels:         req.Labels,
		AssigneeIDs:    req.AssignedTo.IDs(),
		Recurrence:     req.Recurrence.ToModel(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. Status changes go through the
// transition rules and completing a recurring task schedules its successor.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Labels:      req.Labels,
	}
	if req.Priority.Set {
		if req.Priority.Null || req.Priority.Value.IsZero() {
			input.ClearPriority = true
		} else {
			input.PriorityBucket, input.PriorityLevel = req.Priority.Value.Parts()
		}
	}
	if req.DueDate.Set {
		if req.DueDate.Null {
			input.ClearDueDate = true
		} else {
			input.DueDate = dto.TimePtr(&req.DueDate.Value)
		}
	}
	if req.Recurrence.Set {
		if req.Recurrence.Null {
			input.Recurrence = &models.Recurrence{}
		} else {
			input.Recurrence = req.Recurrence.Value.ToModel()
		}
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ArchiveTask hides a task from default listings
func (h *TaskHandler) ArchiveTask(c *gin.Context) {
	h.setArchived(c, true)
}

// UnarchiveTask restores an archived task
func (h *TaskHandler) UnarchiveTask(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *TaskHandler) setArchived(c *gin.Context, archived bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.ArchiveTask(c.Request.Context(), userID, c.Param("id"), archived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AssignTask assigns users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.AssignUsersRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AssignUsers(c.Request.Context(), userID, c.Param("id"), req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users assigned successfully",
		"task":    dto.ToTaskDTO(*task),
	})
}

// UnassignTask removes user assignments from a task
func (h *TaskHandler) UnassignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.AssignUsersRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UnassignUsers(c.Request.Context(), userID, c.Param("id"), req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users unassigned successfully",
		"task":    dto.ToTaskDTO(*task),
	})
}

// ReassignTask replaces every assignee with exactly one user.
func (h *TaskHandler) ReassignTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ReassignRequest
	if !bindJSON(c, &req) {
		return
	}
	assignee, single := req.AssignedTo.Single()
	if !single {
		apierrors.BadRequest(c, "assigned_to must name exactly one user")
		return
	}

	task, err := h.taskService.ReassignTask(c.Request.Context(), userID, c.Param("id"), assignee.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToReassignResponse(*task))
}

// GenerateTasks generates task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	generatedTasks, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:      req.Text,
		ActorID:   userID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": generatedTasks,
	})
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
