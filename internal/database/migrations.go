package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"gorm.io/gorm"
)

type indexSpec struct {
	model   any
	name    string
	columns string
}

// Composite indexes backing the visibility and notification queries.
var indexes = []indexSpec{
	{&models.Membership{}, "idx_memberships_user_project", "user_id, project_id"},
	{&models.TaskAssignment{}, "idx_task_assignments_user_task", "user_id, task_id"},
	{&models.Task{}, "idx_tasks_project_status", "project_id, status"},
	{&models.Task{}, "idx_tasks_creator_status", "creator_id, status"},
	{&models.Notification{}, "idx_notifications_recipient_read", "recipient_id, is_read"},
}

// AddIndexes adds performance-critical indexes that gorm tags cannot express.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.Debug("index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", slog.String("index", idx.name), slog.String("table", stmt.Schema.Table))
	}

	return nil
}
