// Package access decides which tasks a user may see and change.
//
// Permission is an ordered list of rules evaluated short-circuit; the first
// rule that grants access wins. Every collaborator lookup inside a rule goes
// through utils.TryOr, so a failing lookup only turns that rule off.
package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/utils"
	"gorm.io/gorm"
)

// Directory is the read-only view of users the resolver needs.
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListIDsByManager(ctx context.Context, managerID string) ([]string, error)
}

// ProjectLookup is the read-only view of projects and memberships the resolver needs.
type ProjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindMember(ctx context.Context, projectID, userID string) (*models.Membership, error)
	ListMembershipsByUserID(ctx context.Context, userID string) ([]models.Membership, error)
	ListIDsByOwners(ctx context.Context, ownerIDs []string) ([]string, error)
}

// Mode selects which permission a rule is asked about.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

// Request is what a rule inspects.
type Request struct {
	Viewer *models.User
	Task   *models.Task
	Mode   Mode
}

// Rule grants access when Check returns true.
type Rule struct {
	Name  string
	Check func(ctx context.Context, r *Resolver, req Request) bool
}

// DefaultRules is the precedence order used by NewResolver. A rule never grants
// edit without also granting view.
var DefaultRules = []Rule{
	{Name: "admin", Check: adminRule},
	{Name: "creator_or_assignee", Check: creatorOrAssigneeRule},
	{Name: "management_chain", Check: managementChainRule},
	{Name: "project", Check: projectRule},
}

type Resolver struct {
	users    Directory
	projects ProjectLookup
	logger   *slog.Logger
	rules    []Rule
}

func NewResolver(users Directory, projects ProjectLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		users:    users,
		projects: projects,
		logger:   logger,
		rules:    DefaultRules,
	}
}

// WithRules returns a copy of the resolver evaluating rules instead of DefaultRules.
func (r *Resolver) WithRules(rules ...Rule) *Resolver {
	c := *r
	c.rules = rules
	return &c
}

// CanView reports whether viewerID may read task.
func (r *Resolver) CanView(ctx context.Context, viewerID string, task *models.Task) bool {
	return r.evaluate(ctx, viewerID, task, ModeView)
}

// CanEdit reports whether viewerID may modify task.
func (r *Resolver) CanEdit(ctx context.Context, viewerID string, task *models.Task) bool {
	return r.evaluate(ctx, viewerID, task, ModeEdit)
}

func (r *Resolver) evaluate(ctx context.Context, viewerID string, task *models.Task, mode Mode) bool {
	if viewerID == "" || task == nil {
		return false
	}
	viewer := r.user(ctx, viewerID)
	if viewer == nil {
		return false
	}

	req := Request{Viewer: viewer, Task: task, Mode: mode}
	for _, rule := range r.rules {
		if rule.Check(ctx, r, req) {
			r.logger.Debug("access granted",
				"rule", rule.Name,
				"viewer_id", viewerID,
				"task_id", task.ID,
			)
			return true
		}
	}
	return false
}

// IsManagedBy reports whether subordinateID's manager is managerID. An unknown
// subordinate is not managed by anyone.
func (r *Resolver) IsManagedBy(ctx context.Context, subordinateID, managerID string) bool {
	if subordinateID == "" || managerID == "" {
		return false
	}
	sub := r.user(ctx, subordinateID)
	if sub == nil {
		return false
	}
	return sub.ReportsTo(managerID)
}

// VisibleTaskQuery scopes filter to the tasks viewerID can see: created by or
// assigned to the viewer, in projects the viewer owns, belongs to or whose owner
// the viewer reports to, and created by or assigned to the viewer's reports.
func (r *Resolver) VisibleTaskQuery(ctx context.Context, viewerID string, filter repository.TaskFilter) repository.TaskFilter {
	filter.Visibility = repository.Visibility{}
	viewer := r.user(ctx, viewerID)
	if viewer == nil {
		return filter
	}
	if viewer.Role == models.RoleAdmin {
		filter.Visibility.All = true
		return filter
	}

	filter.Visibility.UserID = viewer.ID

	owners := []string{viewer.ID}
	if viewer.ManagerID != nil && *viewer.ManagerID != "" {
		owners = append(owners, *viewer.ManagerID)
	}
	projectIDs := utils.TryOr(r.logger, "list owned projects", []string(nil), func() ([]string, error) {
		return r.projects.ListIDsByOwners(ctx, owners)
	})
	memberships := utils.TryOr(r.logger, "list memberships", []models.Membership(nil), func() ([]models.Membership, error) {
		return r.projects.ListMembershipsByUserID(ctx, viewer.ID)
	})
	for _, m := range memberships {
		projectIDs = append(projectIDs, m.ProjectID)
	}
	filter.Visibility.ProjectIDs = unique(projectIDs)

	if viewer.Role.CanManageReports() {
		filter.Visibility.SubordinateIDs = utils.TryOr(r.logger, "list reports", []string(nil), func() ([]string, error) {
			return r.users.ListIDsByManager(ctx, viewer.ID)
		})
	}
	return filter
}

func (r *Resolver) user(ctx context.Context, id string) *models.User {
	return utils.TryOr(r.logger, "get user", (*models.User)(nil), func() (*models.User, error) {
		return r.users.GetUser(ctx, id)
	})
}

func adminRule(_ context.Context, _ *Resolver, req Request) bool {
	return req.Viewer.Role == models.RoleAdmin
}

func creatorOrAssigneeRule(_ context.Context, _ *Resolver, req Request) bool {
	return req.Task.CreatorID == req.Viewer.ID || req.Task.IsAssignedTo(req.Viewer.ID)
}

func managementChainRule(ctx context.Context, r *Resolver, req Request) bool {
	if !req.Viewer.Role.CanManageReports() {
		return false
	}
	if r.IsManagedBy(ctx, req.Task.CreatorID, req.Viewer.ID) {
		return true
	}
	for _, assigneeID := range req.Task.AssigneeIDs() {
		if r.IsManagedBy(ctx, assigneeID, req.Viewer.ID) {
			return true
		}
	}
	return false
}

func projectRule(ctx context.Context, r *Resolver, req Request) bool {
	if req.Task.ProjectID == nil || *req.Task.ProjectID == "" {
		return false
	}
	projectID := *req.Task.ProjectID

	// A failed lookup grants nothing through this project, membership included.
	// A project that no longer exists still lets its memberships count.
	resolved := false
	project := utils.TryOr(r.logger, "get project", (*models.Project)(nil), func() (*models.Project, error) {
		p, err := notFoundAsNil(r.projects.FindByID(ctx, projectID))
		resolved = err == nil
		return p, err
	})
	if !resolved {
		return false
	}
	if project != nil {
		if project.OwnerID == req.Viewer.ID {
			return true
		}
		if req.Viewer.ReportsTo(project.OwnerID) {
			return true
		}
	}

	member := utils.TryOr(r.logger, "get membership", (*models.Membership)(nil), func() (*models.Membership, error) {
		return notFoundAsNil(r.projects.FindMember(ctx, projectID, req.Viewer.ID))
	})
	if member == nil {
		return false
	}
	if req.Mode == ModeEdit {
		return member.Role.CanEdit()
	}
	return true
}

func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return v, err
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
