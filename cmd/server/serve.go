package main

import (
	"fmt"
	"log/slog"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/config"
	"github.com/yukikurage/teamtasks-api/internal/database"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/handlers"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/recurrence"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/services"
	"gorm.io/gorm"
)

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return runServe(cfg, log, skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on startup")

	return cmd
}

func runServe(cfg *config.Config, log *slog.Logger, skipMigrate bool) error {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if !skipMigrate {
		if err := database.Migrate(db, log); err != nil {
			return err
		}
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	r := handlers.NewRouter(buildRouterConfig(cfg, db, store, log))

	log.Info("server starting", slog.String("addr", cfg.HTTPAddr))
	if err := r.Run(cfg.HTTPAddr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// newSessionStore connects the Redis-backed session store.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(10, "tcp", redisAddr, "", []byte(cfg.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis store: %w", err)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: 2, // Lax
	})
	return store, nil
}

func buildRouterConfig(cfg *config.Config, db *gorm.DB, store sessions.Store, log *slog.Logger) handlers.RouterConfig {
	now := clock.System{}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	resolver := access.NewResolver(userRepo, projectRepo, log)
	dispatcher := notify.NewDispatcher(notificationRepo, userRepo, projectRepo, log)
	runner := effects.NewRunner(log)

	deps := services.TaskDeps{
		Tasks:      taskRepo,
		Projects:   projectRepo,
		Users:      userRepo,
		Access:     resolver,
		Recurrence: recurrence.NewEngine(taskRepo, now, log),
		Notifier:   dispatcher,
		Effects:    runner,
		Clock:      now,
		Logger:     log,
	}
	if cfg.OpenAIAPIKey != "" {
		deps.Generator = services.NewAIService(cfg.OpenAIAPIKey, now)
	} else {
		log.Warn("OPENAI_API_KEY not set, task generation is disabled")
	}
	taskService := services.NewTaskService(deps)

	return handlers.RouterConfig{
		Auth:          handlers.NewAuthHandler(services.NewAuthService(userRepo)),
		Projects:      handlers.NewProjectHandler(services.NewProjectService(projectRepo, userRepo, now)),
		Tasks:         handlers.NewTaskHandler(taskService),
		Subtasks:      handlers.NewSubtaskHandler(services.NewSubtaskService(subtaskRepo, taskRepo, resolver, dispatcher, runner, now)),
		Notes:         handlers.NewNoteHandler(services.NewNoteService(repository.NewNoteRepository(db), taskRepo, resolver, dispatcher, runner)),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(notificationRepo)),
		Admin:         handlers.NewAdminHandler(services.NewAdminService(userRepo)),
		Health:        handlers.NewHealthHandler(db),
		TaskLoader:    taskService,
		Users:         userRepo,
		SessionStore:  store,
		Logger:        log,
	}
}
