package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/teamtasks-api/internal/dto"
	apierrors "github.com/yukikurage/teamtasks-api/internal/errors"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/services"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env *handlerEnv
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = newHandlerEnv(suite.T(), nil)

	testutil.CreateUser(suite.T(), suite.env.db, "owner", models.RoleStaff, "")
	testutil.CreateUser(suite.T(), suite.env.db, "alice", models.RoleStaff, "")
	testutil.CreateUser(suite.T(), suite.env.db, "viewer", models.RoleStaff, "")
	testutil.CreateUser(suite.T(), suite.env.db, "stranger", models.RoleStaff, "")
	testutil.CreateProject(suite.T(), suite.env.db, "P", "owner")
	testutil.AddMember(suite.T(), suite.env.db, "P", "alice", models.MembershipContributor)
	testutil.AddMember(suite.T(), suite.env.db, "P", "viewer", models.MembershipViewer)
}

func (suite *TaskHandlerTestSuite) createTask(userID string, body map[string]any) dto.TaskDTO {
	c, w := newContext(http.MethodPost, "/api/tasks", body, userID)
	suite.env.tasks.CreateTask(c)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decodeJSON[dto.TaskDTO](suite.T(), w)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	task := suite.createTask("owner", map[string]any{
		"title":       "Quarterly report",
		"project_id":  "P",
		"priority":    "high",
		"due_date":    "2025-06-10T17:00:00",
		"assigned_to": []any{"alice", map[string]string{"id": "owner"}},
		"labels":      []string{"finance", "finance"},
	})

	assert.Equal(suite.T(), "Quarterly report", task.Title)
	assert.Equal(suite.T(), models.TaskStatusTodo, task.Status)
	assert.Equal(suite.T(), "owner", task.CreatorID)
	assert.Equal(suite.T(), []string{"alice", "owner"}, task.AssignedTo.IDs())
	assert.Equal(suite.T(), []string{"finance"}, task.Labels)
	suite.Require().NotNil(task.PriorityLevel)
	assert.Equal(suite.T(), models.PriorityHigh, *task.PriorityLevel)
	assert.Nil(suite.T(), task.PriorityBucket)
	suite.Require().NotNil(task.DueDate)
	assert.True(suite.T(), task.DueDate.Equal(time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC)))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_DefaultsToCreatorAssignee() {
	task := suite.createTask("alice", map[string]any{"title": "Solo", "priority": 9})

	assert.Equal(suite.T(), []string{"alice"}, task.AssignedTo.IDs())
	suite.Require().NotNil(task.PriorityBucket)
	assert.Equal(suite.T(), 9, *task.PriorityBucket)
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing title", map[string]any{"project_id": "P"}, http.StatusBadRequest},
		{"unknown level", map[string]any{"title": "x", "priority": "urgent"}, http.StatusBadRequest},
		{"bucket out of range", map[string]any{"title": "x", "priority": 11}, http.StatusBadRequest},
		{"bad status", map[string]any{"title": "x", "status": "archived"}, http.StatusBadRequest},
		{"bad recurrence", map[string]any{"title": "x", "recurrence": map[string]any{"enabled": true}}, http.StatusBadRequest},
		{"unknown assignee", map[string]any{"title": "x", "assigned_to": []string{"ghost"}}, http.StatusBadRequest},
		{"viewer cannot create in project", map[string]any{"title": "x", "project_id": "P"}, http.StatusForbidden},
		{"unknown project", map[string]any{"title": "x", "project_id": "nope"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := newContext(http.MethodPost, "/api/tasks", tt.body, "viewer")
			suite.env.tasks.CreateTask(c)
			assert.Equal(suite.T(), tt.status, w.Code, w.Body.String())
		})
	}
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	suite.createTask("owner", map[string]any{"title": "Project task", "project_id": "P"})
	suite.createTask("stranger", map[string]any{"title": "Private task"})

	c, w := newContext(http.MethodGet, "/api/tasks?page=1&limit=10", nil, "viewer")
	suite.env.tasks.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	response := decodeJSON[map[string]any](suite.T(), w)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]any)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "Project task", tasks[0].(map[string]any)["title"])

	pagination := response["pagination"].(map[string]any)
	assert.EqualValues(suite.T(), 1, pagination["total"])
	assert.EqualValues(suite.T(), 10, pagination["limit"])
}

func (suite *TaskHandlerTestSuite) TestListTasks_Filters() {
	suite.createTask("owner", map[string]any{"title": "Low", "project_id": "P", "priority": "Low"})
	suite.createTask("owner", map[string]any{"title": "High", "project_id": "P", "priority": 9, "assigned_to": []string{"alice"}})

	c, w := newContext(http.MethodGet, "/api/tasks?sort=priority", nil, "owner")
	suite.env.tasks.ListTasks(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	list := decodeJSON[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(list.Tasks, 2)
	assert.Equal(suite.T(), "High", list.Tasks[0].Title)

	c, w = newContext(http.MethodGet, "/api/tasks?assigned_to_me=true", nil, "alice")
	suite.env.tasks.ListTasks(c)
	list = decodeJSON[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(list.Tasks, 1)
	assert.Equal(suite.T(), "High", list.Tasks[0].Title)

	c, w = newContext(http.MethodGet, "/api/tasks?sort=title", nil, "owner")
	suite.env.tasks.ListTasks(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodGet, "/api/tasks?status=finished", nil, "owner")
	suite.env.tasks.ListTasks(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodGet, "/api/tasks?managed_by=alice", nil, "owner")
	suite.env.tasks.ListTasks(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	c, w := newContext(http.MethodGet, "/api/tasks", nil, "")

	suite.env.tasks.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetTask_NotFoundInContext tests when task is not in context
func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundInContext() {
	c, w := newContext(http.MethodGet, "/api/tasks/t1", nil, "owner", idParam("t1"))

	suite.env.tasks.GetTask(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Transitions() {
	task := suite.createTask("owner", map[string]any{"title": "Flow", "project_id": "P"})

	patch := func(userID string, body any) (int, apierrors.APIError, dto.TaskDTO) {
		c, w := newContext(http.MethodPatch, "/api/tasks/"+task.ID, body, userID, idParam(task.ID))
		suite.env.tasks.UpdateTask(c)
		var apiErr apierrors.APIError
		var updated dto.TaskDTO
		if w.Code == http.StatusOK {
			updated = decodeJSON[dto.TaskDTO](suite.T(), w)
		} else {
			apiErr = decodeJSON[apierrors.APIError](suite.T(), w)
		}
		return w.Code, apiErr, updated
	}

	code, _, updated := patch("alice", map[string]any{"status": "in_progress", "priority": 3})
	suite.Require().Equal(http.StatusOK, code)
	assert.Equal(suite.T(), models.TaskStatusInProgress, updated.Status)
	assert.Equal(suite.T(), 3, *updated.PriorityBucket)

	code, apiErr, _ := patch("viewer", map[string]any{"title": "Hijack"})
	assert.Equal(suite.T(), http.StatusForbidden, code)
	assert.Equal(suite.T(), apierrors.ErrCodeForbidden, apiErr.Code)

	code, _, _ = patch("stranger", map[string]any{"title": "Hijack"})
	assert.Equal(suite.T(), http.StatusNotFound, code)

	code, _, updated = patch("owner", map[string]any{"status": "done", "priority": nil, "due_date": nil})
	suite.Require().Equal(http.StatusOK, code)
	assert.Equal(suite.T(), models.TaskStatusDone, updated.Status)
	assert.NotNil(suite.T(), updated.CompletedAt)
	assert.Nil(suite.T(), updated.PriorityBucket)
	assert.Nil(suite.T(), updated.DueDate)

	code, apiErr, _ = patch("owner", map[string]any{"status": "to_do"})
	assert.Equal(suite.T(), http.StatusBadRequest, code)
	assert.Equal(suite.T(), apierrors.ErrCodeInvalidTransition, apiErr.Code)

	code, _, _ = patch("owner", []byte(`{"title":`))
	assert.Equal(suite.T(), http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_CompletingRecurringTaskSchedulesNext() {
	task := suite.createTask("owner", map[string]any{
		"title":      "Weekly sync",
		"project_id": "P",
		"due_date":   "2025-06-02T10:00:00Z",
		"recurrence": map[string]any{"enabled": true, "frequency": "weekly"},
	})

	c, w := newContext(http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"status": "done"}, "owner", idParam(task.ID))
	suite.env.tasks.UpdateTask(c)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var next models.Task
	suite.Require().NoError(suite.env.db.Where("parent_recurring_task_id = ?", task.ID).First(&next).Error)
	assert.Equal(suite.T(), models.TaskStatusTodo, next.Status)
	assert.True(suite.T(), next.DueDate.Equal(time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC)))
}

func (suite *TaskHandlerTestSuite) TestReassignTask() {
	task := suite.createTask("owner", map[string]any{"title": "Handover", "project_id": "P"})

	c, w := newContext(http.MethodPost, "/reassign", map[string]any{"assigned_to": map[string]string{"id": "alice"}}, "owner", idParam(task.ID))
	suite.env.tasks.ReassignTask(c)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	response := decodeJSON[map[string]any](suite.T(), w)
	assignee := response["assigned_to"].(map[string]any)
	assert.Equal(suite.T(), "alice", assignee["id"])
	assert.Len(suite.T(), response["task"].(map[string]any)["assigned_to"], 1)

	c, w = newContext(http.MethodPost, "/reassign", map[string]any{"assigned_to": "owner"}, "alice", idParam(task.ID))
	suite.env.tasks.ReassignTask(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	c, w = newContext(http.MethodPost, "/reassign", map[string]any{"assigned_to": []string{"alice", "owner"}}, "owner", idParam(task.ID))
	suite.env.tasks.ReassignTask(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAssignAndUnassign() {
	task := suite.createTask("owner", map[string]any{"title": "Pair"})

	c, w := newContext(http.MethodPost, "/assign", map[string]any{"user_ids": []string{"alice"}}, "owner", idParam(task.ID))
	suite.env.tasks.AssignTask(c)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	assigned := decodeJSON[struct {
		Task dto.TaskDTO `json:"task"`
	}](suite.T(), w)
	assert.ElementsMatch(suite.T(), []string{"owner", "alice"}, assigned.Task.AssignedTo.IDs())

	c, w = newContext(http.MethodPost, "/assign", map[string]any{"user_ids": []string{}}, "owner", idParam(task.ID))
	suite.env.tasks.AssignTask(c)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodPost, "/unassign", map[string]any{"user_ids": []string{"owner"}}, "owner", idParam(task.ID))
	suite.env.tasks.UnassignTask(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	unassigned := decodeJSON[struct {
		Task dto.TaskDTO `json:"task"`
	}](suite.T(), w)
	assert.Equal(suite.T(), []string{"alice"}, unassigned.Task.AssignedTo.IDs())
}

func (suite *TaskHandlerTestSuite) TestArchiveAndDelete() {
	task := suite.createTask("owner", map[string]any{"title": "Old", "project_id": "P"})

	c, w := newContext(http.MethodPost, "/archive", nil, "alice", idParam(task.ID))
	suite.env.tasks.ArchiveTask(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.True(suite.T(), decodeJSON[dto.TaskDTO](suite.T(), w).IsArchived)

	c, w = newContext(http.MethodPost, "/unarchive", nil, "alice", idParam(task.ID))
	suite.env.tasks.UnarchiveTask(c)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.False(suite.T(), decodeJSON[dto.TaskDTO](suite.T(), w).IsArchived)

	c, w = newContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "alice", idParam(task.ID))
	suite.env.tasks.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	c, w = newContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "owner", idParam(task.ID))
	suite.env.tasks.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	c, w = newContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "owner", idParam(task.ID))
	suite.env.tasks.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	c, w := newContext(http.MethodPost, "/api/tasks/generate", map[string]any{"text": "plan the offsite"}, "owner")

	suite.env.tasks.GenerateTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func TestGenerateTasks(t *testing.T) {
	high := models.PriorityHigh
	generator := &stubGenerator{tasks: []services.GeneratedTask{
		{Title: "Book venue", Priority: &high},
		{Title: "  "},
	}}
	env := newHandlerEnv(t, generator)
	testutil.CreateUser(t, env.db, "owner", models.RoleStaff, "")

	c, w := newContext(http.MethodPost, "/api/tasks/generate", map[string]any{"text": "plan the offsite"}, "owner")
	env.tasks.GenerateTasks(c)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeJSON[struct {
		Tasks []services.GeneratedTask `json:"tasks"`
	}](t, w)
	if assert.Len(t, response.Tasks, 1) {
		assert.Equal(t, "Book venue", response.Tasks[0].Title)
	}

	generator.err = errors.New("upstream timeout")
	c, w = newContext(http.MethodPost, "/api/tasks/generate", map[string]any{"text": "plan the offsite"}, "owner")
	env.tasks.GenerateTasks(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	c, w = newContext(http.MethodPost, "/api/tasks/generate", map[string]any{"text": "x", "project_id": "missing"}, "owner")
	env.tasks.GenerateTasks(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
