package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/teamtasks-api/internal/access"
	"github.com/yukikurage/teamtasks-api/internal/effects"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/notify"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"gorm.io/gorm"
)

var ErrNoteBodyRequired = errors.New("note body is required")

// NoteService handles comments on tasks.
type NoteService struct {
	noteRepo repository.NoteRepository
	taskRepo repository.TaskRepository
	access   *access.Resolver
	notifier *notify.Dispatcher
	effects  *effects.Runner
}

func NewNoteService(noteRepo repository.NoteRepository, taskRepo repository.TaskRepository, resolver *access.Resolver, notifier *notify.Dispatcher, runner *effects.Runner) *NoteService {
	if runner == nil {
		runner = effects.NewRunner(slog.Default())
	}
	return &NoteService{
		noteRepo: noteRepo,
		taskRepo: taskRepo,
		access:   resolver,
		notifier: notifier,
		effects:  runner,
	}
}

// AddNote comments on a task the actor can view.
func (s *NoteService) AddNote(ctx context.Context, actorID, taskID, body string) (*models.Note, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrNoteBodyRequired
	}

	task, err := s.visibleTask(ctx, actorID, taskID)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		TaskID:   task.ID,
		AuthorID: actorID,
		Body:     body,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.effects.Run(ctx, task.ID, effects.Effect{
		Name: "notify " + string(models.NotificationNoteAdded),
		Run: func(ctx context.Context) error {
			s.notifier.NotifyTaskEvent(ctx, task, models.NotificationNoteAdded, actorID)
			return nil
		},
	})

	return note, nil
}

// ListNotes lists the notes of a task the actor can view, oldest first.
func (s *NoteService) ListNotes(ctx context.Context, actorID, taskID string) ([]models.Note, error) {
	if _, err := s.visibleTask(ctx, actorID, taskID); err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) visibleTask(ctx context.Context, actorID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !s.access.CanView(ctx, actorID, task) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
