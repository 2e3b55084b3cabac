package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/dto"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
)

func TestNoteAndNotificationHandlers(t *testing.T) {
	env := newHandlerEnv(t, nil)
	testutil.CreateUser(t, env.db, "owner", models.RoleStaff, "")
	testutil.CreateUser(t, env.db, "viewer", models.RoleStaff, "")
	testutil.CreateProject(t, env.db, "P", "owner")
	testutil.AddMember(t, env.db, "P", "viewer", models.MembershipViewer)
	testutil.CreateTask(t, env.db, "t1", "owner", "P")

	c, w := newContext(http.MethodPost, "/notes", map[string]any{"body": "Can we move this to Friday?"}, "viewer", idParam("t1"))
	env.notes.AddNote(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "viewer", decodeJSON[dto.NoteDTO](t, w).Author.ID)

	c, w = newContext(http.MethodPost, "/notes", map[string]any{"body": ""}, "viewer", idParam("t1"))
	env.notes.AddNote(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newContext(http.MethodGet, "/notes", nil, "owner", idParam("t1"))
	env.notes.ListNotes(c)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decodeJSON[struct {
		Notes []dto.NoteDTO `json:"notes"`
	}](t, w)
	require.Len(t, notes.Notes, 1)
	assert.Equal(t, "viewer", notes.Notes[0].Author.Name)

	c, w = newContext(http.MethodGet, "/api/notifications?unread=true", nil, "owner")
	env.notifications.ListNotifications(c)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := decodeJSON[struct {
		Notifications []models.Notification `json:"notifications"`
	}](t, w)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, models.NotificationNoteAdded, inbox.Notifications[0].Kind)
	assert.Equal(t, "viewer", inbox.Notifications[0].Payload["actor_id"])

	c, w = newContext(http.MethodPost, "/read", nil, "viewer", idParam(inbox.Notifications[0].ID))
	env.notifications.MarkRead(c)
	assert.Equal(t, http.StatusNotFound, w.Code, "only the recipient may mark a notification read")

	c, w = newContext(http.MethodPost, "/read", nil, "owner", idParam(inbox.Notifications[0].ID))
	env.notifications.MarkRead(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodGet, "/api/notifications?unread=true", nil, "owner")
	env.notifications.ListNotifications(c)
	assert.Contains(t, w.Body.String(), `"total":0`)
}
