// Package notify fans task events out to the users who should hear about them.
// Delivery is best effort: a failure for one recipient is logged and the rest
// are still attempted, and nothing is ever returned to the caller.
package notify

import (
	"context"
	"log/slog"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// Sink stores a notification for its recipient.
type Sink interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Directory resolves user ids.
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// MemberLister lists the members of a project.
type MemberLister interface {
	ListMembers(ctx context.Context, projectID string) ([]models.Membership, error)
}

type Dispatcher struct {
	sink    Sink
	users   Directory
	members MemberLister
	logger  *slog.Logger
}

func NewDispatcher(sink Sink, users Directory, members MemberLister, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sink: sink, users: users, members: members, logger: logger}
}

// Recipients returns who is told about an event on task: the creator, the
// assignees, every resolvable project member and extra, in that order,
// without duplicates and never including actorID.
func (d *Dispatcher) Recipients(ctx context.Context, task *models.Task, actorID string, extra ...string) []string {
	set := newRecipientSet(actorID)
	set.add(task.CreatorID)
	for _, id := range task.AssigneeIDs() {
		set.add(id)
	}

	if task.ProjectID != nil && *task.ProjectID != "" {
		projectID := *task.ProjectID
		members := utils.TryOr(d.logger, "list project members", []models.Membership(nil), func() ([]models.Membership, error) {
			return d.members.ListMembers(ctx, projectID)
		})
		for _, m := range members {
			if m.UserID == "" {
				continue
			}
			userID := m.UserID
			user := utils.TryOr(d.logger, "resolve project member", (*models.User)(nil), func() (*models.User, error) {
				return d.users.GetUser(ctx, userID)
			})
			if user == nil {
				continue
			}
			set.add(user.ID)
		}
	}

	for _, id := range extra {
		set.add(id)
	}
	return set.ids
}

// NotifyTaskEvent delivers kind for task to every recipient.
func (d *Dispatcher) NotifyTaskEvent(ctx context.Context, task *models.Task, kind models.NotificationKind, actorID string, extra ...string) {
	d.NotifyTaskEventWithPayload(ctx, task, kind, actorID, nil, extra...)
}

// NotifyTaskEventWithPayload is NotifyTaskEvent with payload merged into every
// notification's payload.
func (d *Dispatcher) NotifyTaskEventWithPayload(ctx context.Context, task *models.Task, kind models.NotificationKind, actorID string, payload map[string]any, extra ...string) {
	if task == nil {
		return
	}
	recipients := d.Recipients(ctx, task, actorID, extra...)
	for _, recipientID := range recipients {
		d.deliver(ctx, recipientID, kind, task, actorID, payload)
	}
	d.logger.Debug("task event dispatched",
		"task_id", task.ID,
		"kind", kind,
		"recipients", len(recipients),
	)
}

// NotifyUser delivers kind for task to a single recipient unless it is the actor.
func (d *Dispatcher) NotifyUser(ctx context.Context, recipientID string, kind models.NotificationKind, task *models.Task, actorID string, payload map[string]any) {
	if task == nil || recipientID == "" || recipientID == actorID {
		return
	}
	d.deliver(ctx, recipientID, kind, task, actorID, payload)
}

func (d *Dispatcher) deliver(ctx context.Context, recipientID string, kind models.NotificationKind, task *models.Task, actorID string, extra map[string]any) {
	payload := map[string]any{
		"title":    task.Title,
		"status":   string(task.Status),
		"actor_id": actorID,
	}
	for k, v := range extra {
		payload[k] = v
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		TaskID:      task.ID,
		Payload:     payload,
	}
	utils.TryOr(d.logger.With("recipient_id", recipientID, "task_id", task.ID), "create notification", struct{}{}, func() (struct{}, error) {
		return struct{}{}, d.sink.Create(ctx, notification)
	})
}

type recipientSet struct {
	actorID string
	seen    map[string]struct{}
	ids     []string
}

func newRecipientSet(actorID string) *recipientSet {
	return &recipientSet{actorID: actorID, seen: map[string]struct{}{}}
}

func (s *recipientSet) add(id string) {
	if id == "" || id == s.actorID {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}
