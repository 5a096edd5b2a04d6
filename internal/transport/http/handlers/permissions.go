package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// PermissionHandler exposes the permission catalog.
type PermissionHandler struct {
	permissions *usecase.PermissionService
}

// NewPermissionHandler builds a PermissionHandler.
func NewPermissionHandler(permissions *usecase.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// Create handles POST /api/v1/permissions.
func (h *PermissionHandler) Create(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "code, name, and type are required"))
		return
	}

	permission, err := h.permissions.Create(
		c.Request.Context(),
		req.Code,
		req.Name,
		req.Description,
		req.Module,
		domain.PermissionType(req.Type),
	)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPermissionResponse(permission))
}

// Get handles GET /api/v1/permissions/:code.
func (h *PermissionHandler) Get(c *gin.Context) {
	permission, err := h.permissions.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPermissionResponse(permission))
}

// List handles GET /api/v1/permissions, grouped by module when the
// grouped query flag is set.
func (h *PermissionHandler) List(c *gin.Context) {
	if c.Query("grouped") == "true" {
		groups, err := h.permissions.ListGrouped(c.Request.Context())
		if err != nil {
			RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
		return
	}

	permissions, err := h.permissions.List(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}

	resp := make([]PermissionResponse, 0, len(permissions))
	for i := range permissions {
		resp = append(resp, toPermissionResponse(&permissions[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func toPermissionResponse(permission *domain.Permission) PermissionResponse {
	return PermissionResponse{
		Code:        permission.Code,
		Name:        permission.Name,
		Description: permission.Description,
		Module:      permission.Module,
		Type:        string(permission.Type),
		CreatedAt:   permission.CreatedAt,
	}
}
