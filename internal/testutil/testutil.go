// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/database"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Now is the instant fixed clocks in tests return.
var Now = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

// NewDB opens a migrated in-memory SQLite database closed on cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser inserts a user with the given id and role. managerID may be empty.
func CreateUser(t *testing.T, db *gorm.DB, id string, role models.Role, managerID string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           id,
		Username:     id,
		Handle:       id,
		Email:        id + "@example.com",
		Name:         id,
		PasswordHash: "hashed",
		Role:         role,
		Active:       true,
	}
	if managerID != "" {
		user.ManagerID = &managerID
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project and the owner's membership.
func CreateProject(t *testing.T, db *gorm.DB, id, ownerID string) *models.Project {
	t.Helper()

	project := &models.Project{ID: id, Name: id, OwnerID: ownerID}
	require.NoError(t, db.Omit("Owner", "Members").Create(project).Error)
	AddMember(t, db, id, ownerID, models.MembershipOwner)
	return project
}

// AddMember inserts a membership record.
func AddMember(t *testing.T, db *gorm.DB, projectID, userID string, role models.MembershipRole) {
	t.Helper()

	member := &models.Membership{ProjectID: projectID, UserID: userID, Role: role, JoinedAt: Now}
	require.NoError(t, db.Omit("Project", "User").Create(member).Error)
}

// CreateTask inserts a to_do task created by creatorID and assigned to assignees.
func CreateTask(t *testing.T, db *gorm.DB, id, creatorID, projectID string, assignees ...string) *models.Task {
	t.Helper()

	task := &models.Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "Test Description",
		Status:      models.TaskStatusTodo,
		CreatorID:   creatorID,
		CreatorName: creatorID,
	}
	if projectID != "" {
		task.ProjectID = &projectID
	}
	require.NoError(t, db.Omit("Assignments").Create(task).Error)

	for _, userID := range assignees {
		assignment := models.TaskAssignment{TaskID: id, UserID: userID, UserName: userID}
		require.NoError(t, db.Omit("User").Create(&assignment).Error)
		task.Assignments = append(task.Assignments, assignment)
	}
	return task
}
