package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// UserHandler exposes account management endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username, password, and email are required"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), usecase.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		RoleIDs:     req.RoleIDs,
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT /api/v1/users/:id. A stale version yields 409
// with the current state in the body.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and version are required"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), usecase.UpdateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Version:     req.Version,
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// SetStatus handles PATCH /api/v1/users/:id/status.
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req SetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "isActive is required"))
		return
	}

	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "status updated"})
}

// SetRoles handles PUT /api/v1/users/:id/roles.
func (h *UserHandler) SetRoles(c *gin.Context) {
	var req SetUserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "roleIds is required"))
		return
	}

	if err := h.users.SetRoles(c.Request.Context(), c.Param("id"), req.RoleIDs); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "roles updated"})
}

// AssignRole handles POST /api/v1/users/:id/roles/:roleId.
func (h *UserHandler) AssignRole(c *gin.Context) {
	if err := h.users.AssignRole(c.Request.Context(), c.Param("id"), c.Param("roleId")); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role assigned"})
}

// RemoveRole handles DELETE /api/v1/users/:id/roles/:roleId.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	if err := h.users.RemoveRole(c.Request.Context(), c.Param("id"), c.Param("roleId")); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "role removed"})
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}

// List handles GET /api/v1/users with keyword, status, and paging
// query parameters.
func (h *UserHandler) List(c *gin.Context) {
	filter := port.UserListFilter{
		Keyword: c.Query("keyword"),
	}

	if active := c.Query("isActive"); active != "" {
		value, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "isActive must be true or false"))
			return
		}
		filter.IsActive = &value
	}

	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
