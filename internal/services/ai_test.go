package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/models"
)

func TestParseGeneratedTasks(t *testing.T) {
	content := "```json\n" + `[
  {"title": "Book venue", "description": "Call the hotel", "due_date": "2025-06-10T09:00:00", "priority": "HIGH"},
  {"title": "Send invites", "description": "", "due_date": "soon", "priority": "whenever"}
]` + "\n```"

	tasks, err := parseGeneratedTasks(content)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Book venue", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), *tasks[0].DueDate)
	require.NotNil(t, tasks[0].Priority)
	assert.Equal(t, models.PriorityHigh, *tasks[0].Priority)

	assert.Nil(t, tasks[1].DueDate, "unparseable dates are dropped")
	assert.Nil(t, tasks[1].Priority)
}

func TestParseGeneratedTasksInvalid(t *testing.T) {
	_, err := parseGeneratedTasks("I could not find any tasks.")
	assert.Error(t, err)
}
