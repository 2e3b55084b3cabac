package handlers

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/constants"
	"github.com/yukikurage/teamtasks-api/internal/middleware"
	"github.com/yukikurage/teamtasks-api/internal/models"
)

// RouterConfig holds everything the HTTP router is wired from.
type RouterConfig struct {
	Auth          *AuthHandler
	Projects      *ProjectHandler
	Tasks         *TaskHandler
	Subtasks      *SubtaskHandler
	Notes         *NoteHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Health        *HealthHandler

	// TaskLoader backs RequireTaskAccess; Users backs RequireRole.
	TaskLoader middleware.TaskLoader
	Users      middleware.UserLookup

	SessionStore sessions.Store
	Logger       *slog.Logger
}

// NewRouter builds the gin engine with every API route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	r.GET("/health", cfg.Health.Health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", cfg.Auth.Signup)
			auth.POST("/login", cfg.Auth.Login)
			auth.POST("/logout", cfg.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), cfg.Auth.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", cfg.Projects.ListProjects)
			projects.POST("", cfg.Projects.CreateProject)
			projects.GET("/:id", cfg.Projects.GetProject)
			projects.PUT("/:id", cfg.Projects.UpdateProject)
			projects.DELETE("/:id", cfg.Projects.DeleteProject)
			projects.PUT("/:id/members/:user_id", cfg.Projects.SetMember)
			projects.DELETE("/:id/members/:user_id", cfg.Projects.RemoveMember)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", cfg.Tasks.ListTasks)
			tasks.POST("", cfg.Tasks.CreateTask)
			tasks.POST("/generate", cfg.Tasks.GenerateTasks)

			task := tasks.Group("/:id")
			task.Use(middleware.RequireTaskAccess(cfg.TaskLoader))
			{
				task.GET("", cfg.Tasks.GetTask)
				task.PATCH("", cfg.Tasks.UpdateTask)
				task.DELETE("", cfg.Tasks.DeleteTask)
				task.POST("/archive", cfg.Tasks.ArchiveTask)
				task.POST("/unarchive", cfg.Tasks.UnarchiveTask)
				task.POST("/assign", cfg.Tasks.AssignTask)
				task.POST("/unassign", cfg.Tasks.UnassignTask)
				task.POST("/reassign", cfg.Tasks.ReassignTask)
				task.GET("/subtasks", cfg.Subtasks.ListSubtasks)
				task.POST("/subtasks", cfg.Subtasks.CreateSubtask)
				task.GET("/notes", cfg.Notes.ListNotes)
				task.POST("/notes", cfg.Notes.AddNote)
			}
		}

		subtasks := api.Group("/subtasks")
		subtasks.Use(middleware.RequireAuth())
		{
			subtasks.PATCH("/:id/complete", cfg.Subtasks.CompleteSubtask)
			subtasks.DELETE("/:id", cfg.Subtasks.DeleteSubtask)
		}

		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", cfg.Notifications.ListNotifications)
			notifications.POST("/:id/read", cfg.Notifications.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireRole(cfg.Users, models.RoleAdmin))
		{
			admin.GET("/users", cfg.Admin.ListUsers)
			admin.PATCH("/users/:id", cfg.Admin.UpdateUser)
		}
	}

	return r
}
