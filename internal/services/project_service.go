package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/teamtasks-api/internal/clock"
	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrInvalidProjectName    = errors.New("project name cannot be empty")
	ErrProjectOwnerNotFound  = errors.New("project owner could not be resolved")
	ErrProjectForbidden      = errors.New("user cannot manage this project")
	ErrNotProjectOwner       = errors.New("only the project owner can perform this action")
	ErrInvalidMembershipRole = errors.New("membership role must be owner, manager, contributor or viewer")
	ErrCannotRemoveOwner     = errors.New("the owner's membership cannot be removed or changed")
	ErrProjectMemberNotFound = errors.New("project member not found")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	clock       clock.Clock
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, c clock.Clock) *ProjectService {
	if c == nil {
		c = clock.System{}
	}
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		clock:       c,
	}
}

// ProjectAccess is what a user may do with a project.
type ProjectAccess struct {
	View   bool
	Manage bool
	Owner  bool
}

// CreateProjectInput represents parameters to create a new project. The owner
// is OwnerID, else the user matching OwnerHandle or OwnerEmail, else the actor.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     string
	OwnerHandle string
	OwnerEmail  string
}

// CreateProject creates a project with its owner membership. An actor creating a
// project for someone else joins it as a manager.
func (s *ProjectService) CreateProject(ctx context.Context, actorID string, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	ownerID, err := s.resolveOwner(ctx, actorID, input)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		OwnerID:     ownerID,
	}
	owner := &models.Membership{
		Role:     models.MembershipOwner,
		JoinedAt: s.clock.Now(),
	}

	if err := s.projectRepo.Create(ctx, project, owner); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if ownerID != actorID {
		creator := &models.Membership{
			ProjectID: project.ID,
			UserID:    actorID,
			Role:      models.MembershipManager,
			JoinedAt:  s.clock.Now(),
		}
		if err := s.projectRepo.UpsertMember(ctx, creator); err != nil {
			return nil, fmt.Errorf("failed to add creator to project: %w", err)
		}
	}

	return project, nil
}

func (s *ProjectService) resolveOwner(ctx context.Context, actorID string, input CreateProjectInput) (string, error) {
	switch {
	case input.OwnerID != "":
		user, err := s.userRepo.GetUser(ctx, input.OwnerID)
		if err != nil {
			return "", fmt.Errorf("failed to find owner: %w", err)
		}
		if user == nil {
			return "", ErrProjectOwnerNotFound
		}
		return user.ID, nil
	case input.OwnerHandle != "" || input.OwnerEmail != "":
		email := strings.ToLower(strings.TrimSpace(input.OwnerEmail))
		user, err := s.userRepo.FindByHandleOrEmail(ctx, strings.TrimSpace(input.OwnerHandle), email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrProjectOwnerNotFound
			}
			return "", fmt.Errorf("failed to find owner: %w", err)
		}
		return user.ID, nil
	}
	return actorID, nil
}

// ListProjectsForUser returns the memberships (with projects) held by the user.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]models.Membership, error) {
	memberships, err := s.projectRepo.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// Access reports what actorID may do with project. Admins and owners manage,
// owner and manager members manage, other members and users reporting to
// the owner view.
func (s *ProjectService) Access(ctx context.Context, actorID string, project *models.Project) (ProjectAccess, error) {
	actor, err := s.userRepo.GetUser(ctx, actorID)
	if err != nil {
		return ProjectAccess{}, fmt.Errorf("failed to find user: %w", err)
	}
	if actor == nil {
		return ProjectAccess{}, nil
	}
	if actor.Role == models.RoleAdmin {
		return ProjectAccess{View: true, Manage: true, Owner: project.OwnerID == actor.ID}, nil
	}
	if project.OwnerID == actor.ID {
		return ProjectAccess{View: true, Manage: true, Owner: true}, nil
	}

	access := ProjectAccess{View: actor.ReportsTo(project.OwnerID)}
	member, err := s.projectRepo.FindMember(ctx, project.ID, actor.ID)
	switch {
	case err == nil:
		access.View = true
		access.Manage = member.Role == models.MembershipOwner || member.Role == models.MembershipManager
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return ProjectAccess{}, fmt.Errorf("failed to verify membership: %w", err)
	}
	return access, nil
}

// GetProject loads a project the actor may view.
func (s *ProjectService) GetProject(ctx context.Context, actorID, projectID string) (*models.Project, ProjectAccess, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, ProjectAccess{}, err
	}
	access, err := s.Access(ctx, actorID, project)
	if err != nil {
		return nil, ProjectAccess{}, err
	}
	if !access.View {
		return nil, ProjectAccess{}, ErrProjectNotFound
	}
	return project, access, nil
}

// GetProjectWithMembers returns a project and all of its members.
func (s *ProjectService) GetProjectWithMembers(ctx context.Context, actorID, projectID string) (*models.Project, []models.Membership, error) {
	project, _, err := s.GetProject(ctx, actorID, projectID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.projectRepo.ListMembers(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// UpdateProjectInput holds the editable project fields.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// UpdateProject updates a project's name and description.
func (s *ProjectService) UpdateProject(ctx context.Context, actorID, projectID string, input UpdateProjectInput) (*models.Project, error) {
	project, access, err := s.GetProject(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.Manage {
		return nil, ErrProjectForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project together with its tasks and memberships.
func (s *ProjectService) DeleteProject(ctx context.Context, actorID, projectID string) error {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return err
	}
	access, err := s.Access(ctx, actorID, project)
	if err != nil {
		return err
	}
	if !access.View {
		return ErrProjectNotFound
	}
	if !access.Owner {
		actor, err := s.userRepo.GetUser(ctx, actorID)
		if err != nil {
			return fmt.Errorf("failed to find user: %w", err)
		}
		if actor == nil || actor.Role != models.RoleAdmin {
			return ErrNotProjectOwner
		}
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// SetMember adds userID to the project or changes their role.
func (s *ProjectService) SetMember(ctx context.Context, actorID, projectID, userID string, role models.MembershipRole) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, ErrInvalidMembershipRole
	}

	project, access, err := s.GetProject(ctx, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.Manage {
		return nil, ErrProjectForbidden
	}
	if userID == project.OwnerID || role == models.MembershipOwner {
		return nil, ErrCannotRemoveOwner
	}

	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	member := &models.Membership{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  s.clock.Now(),
	}
	if err := s.projectRepo.UpsertMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member to project: %w", err)
	}

	stored, err := s.projectRepo.FindMember(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload member: %w", err)
	}
	return stored, nil
}

// RemoveMember removes a member from the project. Members may remove themselves.
func (s *ProjectService) RemoveMember(ctx context.Context, actorID, projectID, targetID string) error {
	project, access, err := s.GetProject(ctx, actorID, projectID)
	if err != nil {
		return err
	}
	if targetID == project.OwnerID {
		return ErrCannotRemoveOwner
	}
	if !access.Manage && targetID != actorID {
		return ErrProjectForbidden
	}

	if _, err := s.projectRepo.FindMember(ctx, projectID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (s *ProjectService) findProject(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
