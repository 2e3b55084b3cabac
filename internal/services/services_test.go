package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/recurrence"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires every service against one in-memory database.
type testEnv struct {
	db            *gorm.DB
	ctx           context.Context
	tasks         repository.TaskRepository
	subtaskRepo   repository.SubtaskRepository
	notifications repository.NotificationRepository
	resolver      *access.Resolver
	taskService   *TaskService
	subtasks      *SubtaskService
	notes         *NoteService
	projects      *ProjectService
	admin         *AdminService
}

type envOption func(*envConfig)

type envConfig struct {
	sink      notify.Sink
	taskRepo  func(repository.TaskRepository) repository.TaskRepository
	generator TaskGenerator
}

// withSink replaces the notification store used for delivery.
func withSink(sink notify.Sink) envOption {
	return func(c *envConfig) { c.sink = sink }
}

func withTaskRepo(wrap func(repository.TaskRepository) repository.TaskRepository) envOption {
	return func(c *envConfig) { c.taskRepo = wrap }
}

func withGenerator(g TaskGenerator) envOption {
	return func(c *envConfig) { c.generator = g }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	log := testutil.Logger()
	fixed := clock.Fixed{At: testutil.Now}

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	notifications := repository.NewNotificationRepository(db)

	cfg := envConfig{sink: notifications}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.taskRepo != nil {
		tasks = cfg.taskRepo(tasks)
	}

	resolver := access.NewResolver(users, projects, log)
	dispatcher := notify.NewDispatcher(cfg.sink, users, projects, log)
	runner := effects.NewRunner(log)

	return &testEnv{
		db:            db,
		ctx:           context.Background(),
		tasks:         tasks,
		subtaskRepo:   subtaskRepo,
		notifications: notifications,
		resolver:      resolver,
		taskService: NewTaskService(TaskDeps{
			Tasks:      tasks,
			Projects:   projects,
			Users:      users,
			Access:     resolver,
			Recurrence: recurrence.NewEngine(tasks, fixed, log),
			Notifier:   dispatcher,
			Effects:    runner,
			Generator:  cfg.generator,
			Clock:      fixed,
			Logger:     log,
		}),
		subtasks: NewSubtaskService(subtaskRepo, tasks, resolver, dispatcher, runner, fixed),
		notes:    NewNoteService(repository.NewNoteRepository(db), tasks, resolver, dispatcher, runner),
		projects: NewProjectService(projects, users, fixed),
		admin:    NewAdminService(users),
	}
}

func (e *testEnv) user(t *testing.T, id string, role models.Role, managerID string) *models.User {
	return testutil.CreateUser(t, e.db, id, role, managerID)
}

// notificationsFor returns the kinds delivered to recipientID, oldest first.
func (e *testEnv) notificationsFor(t *testing.T, recipientID string) []models.NotificationKind {
	t.Helper()
	var stored []models.Notification
	require.NoError(t, e.db.Where("recipient_id = ?", recipientID).Order("created_at ASC, id ASC").Find(&stored).Error)
	kinds := make([]models.NotificationKind, 0, len(stored))
	for _, n := range stored {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

// brokenSink returns a notification repository whose every write fails: the
// mock has no expectations, so any statement is rejected.
func brokenSink(t *testing.T) (repository.NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return repository.NewNotificationRepository(db), mock
}

// countingSink records recipients and fails for the listed ones.
type countingSink struct {
	failFor   map[string]bool
	attempted []string
	delivered []*models.Notification
}

func (s *countingSink) Create(_ context.Context, n *models.Notification) error {
	s.attempted = append(s.attempted, n.RecipientID)
	if s.failFor[n.RecipientID] {
		return errFakeDelivery
	}
	s.delivered = append(s.delivered, n)
	return nil
}

// failingUpdates makes Update fail while every other call reaches the database.
type failingUpdates struct {
	repository.TaskRepository
	err error
}

func (f failingUpdates) Update(context.Context, *models.Task) error {
	return f.err
}

// failingCounters makes the subtask counter maintenance fail.
type failingCounters struct {
	repository.TaskRepository
}

func (failingCounters) AdjustSubtaskCounters(context.Context, string, int, int) error {
	return errFakeDelivery
}

var errFakeDelivery = fakeError("simulated failure")

type fakeError string

func (e fakeError) Error() string { return string(e) }
