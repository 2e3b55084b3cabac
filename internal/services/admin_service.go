package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/teamtasks-api/internal/models"
	"github.com/yukikurage/teamtasks-api/internal/repository"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

var (
	ErrAdminRequired        = errors.New("admin role required")
	ErrInvalidRole          = errors.New("role must be staff, manager, director, hr or admin")
	ErrManagerNotFound      = errors.New("manager not found")
	ErrManagerCycle         = errors.New("manager assignment would create a reporting cycle")
	ErrCannotDemoteSelf     = errors.New("admins cannot remove their own admin role")
	ErrCannotDeactivateSelf = errors.New("admins cannot deactivate themselves")
)

// maxReportingDepth bounds the walk up a management chain.
const maxReportingDepth = 64

// AdminService holds the user administration operations.
type AdminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

// UpdateUserInput holds the fields an admin may change on a user.
type UpdateUserInput struct {
	Role         *models.Role
	ManagerID    *string
	ClearManager bool
	Active       *bool
}

// ListUsers lists every user.
func (s *AdminService) ListUsers(ctx context.Context, actorID string, params utils.PaginationParams) ([]models.User, int64, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser changes a user's role, manager or active flag.
func (s *AdminService) UpdateUser(ctx context.Context, actorID, userID string, input UpdateUserInput) (*models.User, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		if user.ID == actorID && *input.Role != models.RoleAdmin {
			return nil, ErrCannotDemoteSelf
		}
		user.Role = *input.Role
	}

	if input.ClearManager {
		user.ManagerID = nil
	} else if input.ManagerID != nil {
		if err := s.checkManager(ctx, user.ID, *input.ManagerID); err != nil {
			return nil, err
		}
		managerID := *input.ManagerID
		user.ManagerID = &managerID
	}

	if input.Active != nil {
		if user.ID == actorID && !*input.Active {
			return nil, ErrCannotDeactivateSelf
		}
		user.Active = *input.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// checkManager rejects unknown managers and assignments that would make
// userID report to itself through the chain.
func (s *AdminService) checkManager(ctx context.Context, userID, managerID string) error {
	current := managerID
	for depth := 0; depth < maxReportingDepth && current != ""; depth++ {
		if current == userID {
			return ErrManagerCycle
		}
		manager, err := s.userRepo.GetUser(ctx, current)
		if err != nil {
			return fmt.Errorf("failed to find manager: %w", err)
		}
		if manager == nil {
			if current == managerID {
				return ErrManagerNotFound
			}
			return nil
		}
		if manager.ManagerID == nil {
			return nil
		}
		current = *manager.ManagerID
	}
	return nil
}

func (s *AdminService) requireAdmin(ctx context.Context, actorID string) error {
	actor, err := s.userRepo.GetUser(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if actor == nil || actor.Role != models.RoleAdmin {
		return ErrAdminRequired
	}
	return nil
}
