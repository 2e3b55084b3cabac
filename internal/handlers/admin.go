package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtasks-api/internal/dto"
	"github.com/yukikurage/teamtasks-api/internal/services"
	"github.com/yukikurage/teamtasks-api/internal/utils"
)

// AdminHandler serves user administration.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.adminService.ListUsers(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// UpdateUser changes role, manager or active flag. "manager_id": null
// clears the manager.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.adminService.UpdateUser(c.Request.Context(), userID, c.Param("id"), services.UpdateUserInput{
		Role:         req.Role,
		ManagerID:    req.ManagerID.Ptr(),
		ClearManager: req.ManagerID.Set && (req.ManagerID.Null || req.ManagerID.Value == ""),
		Active:       req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
