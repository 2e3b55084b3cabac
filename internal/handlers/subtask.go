package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/dto"
	"github.com/yukikurage/teamtasks-api/internal/services"
)

type SubtaskHandler struct {
	subtaskService *services.SubtaskService
}

func NewSubtaskHandler(subtaskService *services.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{subtaskService: subtaskService}
}

// ListSubtasks lists the checklist items of a task
func (h *SubtaskHandler) ListSubtasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	subtasks, err := h.subtaskService.ListSubtasks(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subtasks": subtasks,
	})
}

func (h *SubtaskHandler) CreateSubtask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubtaskRequest
	if !bindJSON(c, &req) {
		return
	}

	subtask, err := h.subtaskService.CreateSubtask(c.Request.Context(), userID, c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subtask)
}

// CompleteSubtask sets or clears a subtask's completed flag
func (h *SubtaskHandler) CompleteSubtask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CompleteSubtaskRequest
	if !bindJSON(c, &req) {
		return
	}

	subtask, err := h.subtaskService.CompleteSubtask(c.Request.Context(), userID, c.Param("id"), *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) DeleteSubtask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.subtaskService.DeleteSubtask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subtask deleted successfully",
	})
}
