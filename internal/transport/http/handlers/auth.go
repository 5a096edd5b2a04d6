package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/transport/http/middleware"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// AuthHandler exposes login, token introspection, and password flows.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login handles POST /api/v1/auth/login. Failed attempts return 401
// with one generic message regardless of the underlying cause.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	resp := LoginResponse{
		Success:     result.Success,
		Message:     result.Message,
		Token:       result.Token,
		UserID:      result.UserID,
		Username:    result.Username,
		DisplayName: result.DisplayName,
		Permissions: result.Permissions,
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}

	if !result.Success {
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me, returning the caller's assembled
// profile with roles and resolved permissions.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	info, err := h.auth.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ChangePassword handles POST /api/v1/auth/password, a self-service
// change requiring the current password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "old and new passwords are required"))
		return
	}

	result, err := h.auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, result.Message))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// ResetPassword handles POST /api/v1/users/:id/password/reset, an
// administrative reset that skips the old-password check.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "new password is required"))
		return
	}

	result, err := h.auth.ResetPassword(c.Request.Context(), c.Param("id"), req.NewPassword)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, result.Message))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}
