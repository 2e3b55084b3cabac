package recurrence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/testutil"
	"gorm.io/gorm"
)

func recurring(freq models.Frequency, interval int, due time.Time) *models.Task {
	f := freq
	n := interval
	level := models.PriorityHigh
	projectID := "p1"
	return &models.Task{
		ID:            "t1",
		Title:         "Weekly report",
		Description:   "Send the numbers",
		Status:        models.TaskStatusDone,
		CreatorID:     "u1",
		CreatorName:   "User One",
		ProjectID:     &projectID,
		PriorityLevel: &level,
		Labels:        []string{"ops"},
		DueDate:       &due,
		Recurrence: models.Recurrence{
			Enabled:         true,
			Frequency:       &f,
			Interval:        &n,
			OriginalDueDate: &due,
		},
		Assignments: []models.TaskAssignment{{TaskID: "t1", UserID: "u2", UserName: "User Two"}},
	}
}

func newEngine(store Store) *Engine {
	return NewEngine(store, clock.Fixed{At: testutil.Now}, testutil.Logger())
}

func TestNextOccurrence_Weekly(t *testing.T) {
	due := time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)
	completed := recurring(models.FrequencyWeekly, 1, due)

	next, err := newEngine(nil).NextOccurrence(completed)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, due.AddDate(0, 0, 7), *next.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 7), *next.Recurrence.OriginalDueDate)
	assert.Equal(t, due.AddDate(0, 0, 14), *next.Recurrence.NextOccurrence)
	assert.Equal(t, "t1", *next.ParentRecurringTaskID)
	assert.Equal(t, models.TaskStatusTodo, next.Status)
	assert.Empty(t, next.ID)
	assert.Equal(t, "Weekly report", next.Title)
	assert.Equal(t, []string{"ops"}, next.Labels)
	assert.Equal(t, []string{"u2"}, next.AssigneeIDs())
	assert.Equal(t, testutil.Now, next.CreatedAt)
	assert.Nil(t, next.CompletedAt)

	assert.Equal(t, models.TaskStatusDone, completed.Status)
	assert.Equal(t, due, *completed.DueDate)
	assert.Equal(t, "t1", completed.Assignments[0].TaskID)
}

func TestNextOccurrence_Units(t *testing.T) {
	due := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		freq     models.Frequency
		interval int
		want     time.Time
	}{
		{"daily", models.FrequencyDaily, 3, time.Date(2025, 1, 18, 9, 0, 0, 0, time.UTC)},
		{"weekly twice", models.FrequencyWeekly, 2, time.Date(2025, 1, 29, 9, 0, 0, 0, time.UTC)},
		{"monthly is a calendar month", models.FrequencyMonthly, 1, time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := newEngine(nil).NextOccurrence(recurring(tt.freq, tt.interval, due))
			require.NoError(t, err)
			require.NotNil(t, next)
			assert.Equal(t, tt.want, *next.DueDate)
		})
	}
}

func TestNextOccurrence_IntervalDaysTakesPrecedence(t *testing.T) {
	due := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	completed := recurring(models.FrequencyMonthly, 1, due)
	days := 10
	completed.Recurrence.IntervalDays = &days

	next, err := newEngine(nil).NextOccurrence(completed)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), *next.DueDate)
}

func TestNextOccurrence_NormalisesToUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	due := time.Date(2025, 6, 3, 1, 0, 0, 0, tokyo)

	next, err := newEngine(nil).NextOccurrence(recurring(models.FrequencyDaily, 1, due))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, next.DueDate.Location())
	assert.Equal(t, time.Date(2025, 6, 3, 16, 0, 0, 0, time.UTC), *next.DueDate)
}

func TestNextOccurrence_FallsBackToDueDate(t *testing.T) {
	due := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	completed := recurring(models.FrequencyDaily, 1, due)
	completed.Recurrence.OriginalDueDate = nil

	next, err := newEngine(nil).NextOccurrence(completed)
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 0, 1), *next.DueDate)
}

func TestNextOccurrence_NoSuccessor(t *testing.T) {
	due := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("disabled", func(t *testing.T) {
		completed := recurring(models.FrequencyDaily, 1, due)
		completed.Recurrence = models.Recurrence{}
		next, err := newEngine(nil).NextOccurrence(completed)
		assert.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("expired", func(t *testing.T) {
		completed := recurring(models.FrequencyDaily, 1, due)
		end := testutil.Now.Add(-time.Hour)
		completed.Recurrence.EndDate = &end
		next, err := newEngine(nil).NextOccurrence(completed)
		assert.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("no due date", func(t *testing.T) {
		completed := recurring(models.FrequencyDaily, 1, due)
		completed.DueDate = nil
		completed.Recurrence.OriginalDueDate = nil
		next, err := newEngine(nil).NextOccurrence(completed)
		assert.ErrorIs(t, err, ErrNoDueDate)
		assert.Nil(t, next)
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		completed := recurring(models.FrequencyDaily, 0, due)
		next, err := newEngine(nil).NextOccurrence(completed)
		assert.ErrorIs(t, err, models.ErrRecurrenceInvalidInterval)
		assert.Nil(t, next)
	})
}

func TestCreateNextOccurrence_AtMostOneSuccessor(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "u1", models.RoleStaff, "")
	testutil.CreateUser(t, db, "u2", models.RoleStaff, "")
	repo := repository.NewTaskRepository(db)
	engine := newEngine(repo)

	due := time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)
	completed := recurring(models.FrequencyWeekly, 1, due)
	completed.ProjectID = nil
	require.NoError(t, repo.Create(context.Background(), completed))

	first := engine.CreateNextOccurrence(context.Background(), completed)
	require.NotNil(t, first)
	assert.NotEmpty(t, first.ID)

	second := engine.CreateNextOccurrence(context.Background(), completed)
	assert.Nil(t, second)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("parent_recurring_task_id = ?", "t1").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, due.AddDate(0, 0, 7).Equal(*stored.DueDate))
	assert.Equal(t, []string{"u2"}, stored.AssigneeIDs())
}

type fakeStore struct {
	createErr    error
	successorErr error
	created      []*models.Task
}

func (f *fakeStore) Create(_ context.Context, task *models.Task) error {
	if f.createErr != nil {
		return f.createErr
	}
	task.ID = "generated"
	f.created = append(f.created, task)
	return nil
}

func (f *fakeStore) FindSuccessor(context.Context, string) (*models.Task, error) {
	if f.successorErr != nil {
		return nil, f.successorErr
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCreateNextOccurrence_FailuresYieldNil(t *testing.T) {
	due := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	t.Run("create fails", func(t *testing.T) {
		store := &fakeStore{createErr: errors.New("disk full")}
		assert.Nil(t, newEngine(store).CreateNextOccurrence(context.Background(), recurring(models.FrequencyDaily, 1, due)))
	})

	t.Run("lookup fails", func(t *testing.T) {
		store := &fakeStore{successorErr: errors.New("timeout")}
		assert.Nil(t, newEngine(store).CreateNextOccurrence(context.Background(), recurring(models.FrequencyDaily, 1, due)))
		assert.Empty(t, store.created)
	})

	t.Run("non recurring", func(t *testing.T) {
		store := &fakeStore{}
		completed := recurring(models.FrequencyDaily, 1, due)
		completed.Recurrence = models.Recurrence{}
		assert.Nil(t, newEngine(store).CreateNextOccurrence(context.Background(), completed))
		assert.Empty(t, store.created)
	})

	t.Run("success", func(t *testing.T) {
		store := &fakeStore{}
		next := newEngine(store).CreateNextOccurrence(context.Background(), recurring(models.FrequencyDaily, 1, due))
		require.NotNil(t, next)
		assert.Equal(t, "generated", next.ID)
		assert.Len(t, store.created, 1)
	})
}
