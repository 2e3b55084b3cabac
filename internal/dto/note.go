package dto

import (
	"time"

	"github.com/yukikurage/teamtasks-api/internal/models"
)

type CreateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

type CreateSubtaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type CompleteSubtaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type NoteDTO struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Author    UserRef   `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func ToNoteDTO(note models.Note) NoteDTO {
	author := UserRef{ID: note.AuthorID}
	if note.Author.ID != "" {
		author.Name = note.Author.DisplayName()
	}
	return NoteDTO{
		ID:        note.ID,
		TaskID:    note.TaskID,
		Author:    author,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}
}

func ToNoteDTOs(notes []models.Note) []NoteDTO {
	items := make([]NoteDTO, len(notes))
	for i, note := range notes {
		items[i] = ToNoteDTO(note)
	}
	return items
}
