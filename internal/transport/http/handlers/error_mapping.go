package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/infra/logger"
	"github.com/arklim/user-permission-service/internal/infra/security"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// NewErrorResponse builds an error payload carrying the request id.
func NewErrorResponse(c *gin.Context, msg string) ErrorResponse {
	requestID, _ := c.Request.Context().Value(logger.RequestIDKey{}).(string)
	return ErrorResponse{Error: msg, RequestID: requestID}
}

// ErrorCase maps a sentinel error to an HTTP status and message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// RespondWithError translates an error into an HTTP response.
// Domain validation errors become 400 with per-field detail, rule
// errors 422, version conflicts 409 with the current state, token
// failures 401, and authorization failures 403. Extra cases map
// service-specific sentinels; anything unmatched is a 500.
func RespondWithError(c *gin.Context, err error, cases ...ErrorCase) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		resp := NewErrorResponse(c, "validation failed")
		resp.Fields = validationErr.Fields
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	var ruleErr *domain.RuleError
	if errors.As(err, &ruleErr) {
		c.JSON(http.StatusUnprocessableEntity, NewErrorResponse(c, ruleErr.Message))
		return
	}

	var conflict *usecase.UserConflict
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, ConflictResponse{
			Error:   "resource was modified concurrently",
			Current: toUserResponse(conflict.Current),
		})
		return
	}

	if errors.Is(err, security.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid or expired token"))
		return
	}

	if errors.Is(err, usecase.ErrForbidden) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "permission denied"))
		return
	}

	for _, cs := range cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			c.JSON(cs.Status, NewErrorResponse(c, cs.Message))
			return
		}
	}

	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
	case errors.Is(err, usecase.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "role not found"))
	case errors.Is(err, usecase.ErrPermissionNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "permission not found"))
	case errors.Is(err, usecase.ErrMenuNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "menu not found"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal server error"))
	}
}

func toUserResponse(user *domain.User) UserResponse {
	roleIDs := user.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		IsActive:    user.IsActive,
		RoleIDs:     roleIDs,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
		Version:     user.Version,
	}
}
