package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/constants"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/recurrence"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/services"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// handlerEnv wires every handler against one in-memory database.
type handlerEnv struct {
	db            *gorm.DB
	taskService   *services.TaskService
	users         repository.UserRepository
	auth          *AuthHandler
	tasks         *TaskHandler
	projects      *ProjectHandler
	subtasks      *SubtaskHandler
	notes         *NoteHandler
	notifications *NotificationHandler
	admin         *AdminHandler
	health        *HealthHandler
}

func newHandlerEnv(t *testing.T, generator services.TaskGenerator) *handlerEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.Logger()
	fixed := clock.Fixed{At: testutil.Now}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	resolver := access.NewResolver(userRepo, projectRepo, log)
	dispatcher := notify.NewDispatcher(notificationRepo, userRepo, projectRepo, log)
	runner := effects.NewRunner(log)

	taskService := services.NewTaskService(services.TaskDeps{
		Tasks:      taskRepo,
		Projects:   projectRepo,
		Users:      userRepo,
		Access:     resolver,
		Recurrence: recurrence.NewEngine(taskRepo, fixed, log),
		Notifier:   dispatcher,
		Effects:    runner,
		Generator:  generator,
		Clock:      fixed,
		Logger:     log,
	})

	return &handlerEnv{
		db:            db,
		taskService:   taskService,
		users:         userRepo,
		auth:          NewAuthHandler(services.NewAuthService(userRepo)),
		tasks:         NewTaskHandler(taskService),
		projects:      NewProjectHandler(services.NewProjectService(projectRepo, userRepo, fixed)),
		subtasks:      NewSubtaskHandler(services.NewSubtaskService(subtaskRepo, taskRepo, resolver, dispatcher, runner, fixed)),
		notes:         NewNoteHandler(services.NewNoteService(repository.NewNoteRepository(db), taskRepo, resolver, dispatcher, runner)),
		notifications: NewNotificationHandler(services.NewNotificationService(notificationRepo)),
		admin:         NewAdminHandler(services.NewAdminService(userRepo)),
		health:        NewHealthHandler(db),
	}
}

// router builds the full engine with a cookie session store.
func (e *handlerEnv) router() *gin.Engine {
	return NewRouter(RouterConfig{
		Auth:          e.auth,
		Projects:      e.projects,
		Tasks:         e.tasks,
		Subtasks:      e.subtasks,
		Notes:         e.notes,
		Notifications: e.notifications,
		Admin:         e.admin,
		Health:        e.health,
		TaskLoader:    e.taskService,
		Users:         e.users,
		SessionStore:  cookie.NewStore([]byte("secret")),
		Logger:        testutil.Logger(),
	})
}

// newContext builds a gin test context as userID. An empty userID leaves the
// request unauthenticated. params are path parameters.
func newContext(method, url string, body any, userID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, nil)
	if body != nil {
		raw, ok := body.([]byte)
		if !ok {
			raw, _ = json.Marshal(body)
		}
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(context.Background())

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}
	return c, w
}

func idParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// stubGenerator returns canned suggestions.
type stubGenerator struct {
	tasks []services.GeneratedTask
	err   error
}

func (g *stubGenerator) GenerateTasksFromText(ctx context.Context, text string) ([]services.GeneratedTask, error) {
	return g.tasks, g.err
}
