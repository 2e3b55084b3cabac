package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
)

func counters(t *testing.T, env *testEnv, taskID string) (int, int) {
	t.Helper()
	task, err := env.tasks.FindByID(env.ctx, taskID)
	require.NoError(t, err)
	return task.SubtaskCount, task.SubtaskCompletedCount
}

func TestCompleteSubtask_ToggleCyclesBack(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "owner", models.RoleStaff, "")
	env.user(t, "a", models.RoleStaff, "")
	testutil.CreateTask(t, env.db, "t1", "owner", "", "a")

	subtask, err := env.subtasks.CreateSubtask(env.ctx, "a", "t1", "Draft outline")
	require.NoError(t, err)
	total, done := counters(t, env, "t1")
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, done)

	completed, err := env.subtasks.CompleteSubtask(env.ctx, "a", subtask.ID, true)
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.Equal(t, testutil.Now, *completed.CompletedAt)
	assert.Equal(t, "a", *completed.CompletedBy)
	_, done = counters(t, env, "t1")
	assert.Equal(t, 1, done)
	assert.Equal(t, []models.NotificationKind{models.NotificationSubtaskCompleted}, env.notificationsFor(t, "owner"))
	var notice models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", "owner").First(&notice).Error)
	assert.Equal(t, subtask.ID, notice.Payload["subtask_id"])
	assert.Equal(t, "Draft outline", notice.Payload["subtask_title"])
	assert.Empty(t, env.notificationsFor(t, "a"), "the actor is not notified")

	again, err := env.subtasks.CompleteSubtask(env.ctx, "a", subtask.ID, true)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	_, done = counters(t, env, "t1")
	assert.Equal(t, 1, done, "repeating a completion does not double count")

	reopened, err := env.subtasks.CompleteSubtask(env.ctx, "a", subtask.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.Nil(t, reopened.CompletedBy)

	stored, err := env.subtaskRepo.FindByID(env.ctx, subtask.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)
	assert.Nil(t, stored.CompletedAt)
	assert.Nil(t, stored.CompletedBy)
	_, done = counters(t, env, "t1")
	assert.Equal(t, 0, done)
}

func TestCompleteSubtask_CounterFailureIsAbsorbed(t *testing.T) {
	env := newTestEnv(t, withTaskRepo(func(r repository.TaskRepository) repository.TaskRepository {
		return failingCounters{TaskRepository: r}
	}))
	env.user(t, "u1", models.RoleStaff, "")
	testutil.CreateTask(t, env.db, "t1", "u1", "")

	subtask, err := env.subtasks.CreateSubtask(env.ctx, "u1", "t1", "Step")
	require.NoError(t, err)

	completed, err := env.subtasks.CompleteSubtask(env.ctx, "u1", subtask.ID, true)
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	stored, err := env.subtaskRepo.FindByID(env.ctx, subtask.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed, "the subtask change is kept")

	total, done := counters(t, env, "t1")
	assert.Zero(t, total)
	assert.Zero(t, done)
}

func TestSubtask_Permissions(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "owner", models.RoleStaff, "")
	env.user(t, "reader", models.RoleStaff, "")
	env.user(t, "stranger", models.RoleStaff, "")
	testutil.CreateProject(t, env.db, "P", "owner")
	testutil.AddMember(t, env.db, "P", "reader", models.MembershipViewer)
	testutil.CreateTask(t, env.db, "t1", "owner", "P")

	subtask, err := env.subtasks.CreateSubtask(env.ctx, "owner", "t1", "Step")
	require.NoError(t, err)

	_, err = env.subtasks.CompleteSubtask(env.ctx, "reader", subtask.ID, true)
	assert.ErrorIs(t, err, ErrTaskPermissionDenied)

	_, err = env.subtasks.CompleteSubtask(env.ctx, "stranger", subtask.ID, true)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = env.subtasks.CompleteSubtask(env.ctx, "owner", "missing", true)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)

	list, err := env.subtasks.ListSubtasks(env.ctx, "reader", "t1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.subtasks.CreateSubtask(env.ctx, "owner", "t1", "  ")
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestDeleteSubtask_AdjustsCounters(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", models.RoleStaff, "")
	testutil.CreateTask(t, env.db, "t1", "u1", "")

	first, err := env.subtasks.CreateSubtask(env.ctx, "u1", "t1", "one")
	require.NoError(t, err)
	second, err := env.subtasks.CreateSubtask(env.ctx, "u1", "t1", "two")
	require.NoError(t, err)
	_, err = env.subtasks.CompleteSubtask(env.ctx, "u1", first.ID, true)
	require.NoError(t, err)

	require.NoError(t, env.subtasks.DeleteSubtask(env.ctx, "u1", first.ID))
	total, done := counters(t, env, "t1")
	assert.Equal(t, 1, total)
	assert.Equal(t, 0, done)

	require.NoError(t, env.subtasks.DeleteSubtask(env.ctx, "u1", second.ID))
	total, _ = counters(t, env, "t1")
	assert.Equal(t, 0, total)

	assert.ErrorIs(t, env.subtasks.DeleteSubtask(env.ctx, "u1", second.ID), ErrSubtaskNotFound)
}
