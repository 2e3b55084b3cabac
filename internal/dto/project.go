package dto

import (
	"time"

	"github.com/yukikurage/teamtasks-api/internal/models"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	OwnerHandle string `json:"owner_handle"`
	OwnerEmail  string `json:"owner_email"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type SetMemberRequest struct {
	Role models.MembershipRole `json:"role" binding:"required"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	OwnerID     string                 `json:"owner_id"`
	Role        *models.MembershipRole `json:"role,omitempty"`
	Members     []MemberDTO            `json:"members,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type MemberDTO struct {
	UserID   string                `json:"user_id"`
	Username string                `json:"username,omitempty"`
	Name     string                `json:"name,omitempty"`
	Role     models.MembershipRole `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		OwnerID:     project.OwnerID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectWithMembersDTO includes the member list.
func ToProjectWithMembersDTO(project models.Project, members []models.Membership) ProjectDTO {
	dto := ToProjectDTO(project)
	dto.Members = make([]MemberDTO, len(members))
	for i, m := range members {
		dto.Members[i] = ToMemberDTO(m)
	}
	return dto
}

// ToMyProjectsDTO lists the projects behind the user's memberships with the
// role held in each.
func ToMyProjectsDTO(memberships []models.Membership) []ProjectDTO {
	items := make([]ProjectDTO, len(memberships))
	for i, m := range memberships {
		role := m.Role
		items[i] = ToProjectDTO(m.Project)
		items[i].Role = &role
	}
	return items
}

func ToMemberDTO(m models.Membership) MemberDTO {
	return MemberDTO{
		UserID:   m.UserID,
		Username: m.User.Username,
		Name:     m.User.Name,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}
