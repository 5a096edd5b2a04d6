package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// RoleHandler exposes role management endpoints.
type RoleHandler struct {
	roles *usecase.RoleService
}

// NewRoleHandler builds a RoleHandler.
func NewRoleHandler(roles *usecase.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// Create handles POST /api/v1/roles.
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	role, err := h.roles.Create(c.Request.Context(), req.Name, req.Description, req.PermissionCodes)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRoleResponse(role))
}

// Get handles GET /api/v1/roles/:id.
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRoleResponse(role))
}

// Update handles PUT /api/v1/roles/:id.
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name is required"))
		return
	}

	role, err := h.roles.Update(c.Request.Context(), c.Param("id"), req.Name, req.Description)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRoleResponse(role))
}

// Delete handles DELETE /api/v1/roles/:id.
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role deleted"})
}

// List handles GET /api/v1/roles.
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}

	resp := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		resp = append(resp, toRoleResponse(&roles[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// GrantPermissions handles POST /api/v1/roles/:id/permissions.
func (h *RoleHandler) GrantPermissions(c *gin.Context) {
	var req RolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "codes is required"))
		return
	}

	if err := h.roles.GrantPermissions(c.Request.Context(), c.Param("id"), req.Codes); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "permissions granted"})
}

// RevokePermissions handles DELETE /api/v1/roles/:id/permissions.
func (h *RoleHandler) RevokePermissions(c *gin.Context) {
	var req RolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "codes is required"))
		return
	}

	if err := h.roles.RevokePermissions(c.Request.Context(), c.Param("id"), req.Codes); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "permissions revoked"})
}

// Permissions handles GET /api/v1/roles/:id/permissions.
func (h *RoleHandler) Permissions(c *gin.Context) {
	codes, err := h.roles.PermissionCodes(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if codes == nil {
		codes = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func toRoleResponse(role *domain.Role) RoleResponse {
	codes := role.PermissionCodes
	if codes == nil {
		codes = []string{}
	}
	return RoleResponse{
		ID:              role.ID,
		Name:            role.Name,
		Description:     role.Description,
		PermissionCodes: codes,
		CreatedAt:       role.CreatedAt,
		UpdatedAt:       role.UpdatedAt,
		Version:         role.Version,
	}
}
