package dto

import (
	"github.com/yukikurage/teamtasks-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Handle    string      `json:"handle"`
	Email     string      `json:"email,omitempty"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	ManagerID *string     `json:"manager_id"`
	Active    bool        `json:"active"`
}

// UpdateUserRequest is the admin user patch.
type UpdateUserRequest struct {
	Role      *models.Role  `json:"role"`
	ManagerID Field[string] `json:"manager_id"`
	Active    *bool         `json:"active"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Handle:    user.Handle,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		ManagerID: user.ManagerID,
		Active:    user.Active,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}
