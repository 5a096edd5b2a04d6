package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/transport/http/middleware"
	"github.com/arklim/user-permission-service/internal/usecase"
)

// MenuHandler exposes navigation tree endpoints.
type MenuHandler struct {
	menus *usecase.MenuService
}

// NewMenuHandler builds a MenuHandler.
func NewMenuHandler(menus *usecase.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// Create handles POST /api/v1/menus.
func (h *MenuHandler) Create(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name and path are required"))
		return
	}

	menu, err := h.menus.Create(c.Request.Context(), toMenuInput(req))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMenuResponse(menu))
}

// Get handles GET /api/v1/menus/:id.
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.menus.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMenuResponse(menu))
}

// Update handles PUT /api/v1/menus/:id.
func (h *MenuHandler) Update(c *gin.Context) {
	var req MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name and path are required"))
		return
	}

	menu, err := h.menus.Update(c.Request.Context(), c.Param("id"), toMenuInput(req))
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMenuResponse(menu))
}

// Delete handles DELETE /api/v1/menus/:id.
func (h *MenuHandler) Delete(c *gin.Context) {
	if err := h.menus.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "menu deleted"})
}

// Tree handles GET /api/v1/menus/tree, the unfiltered administrative
// view.
func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.menus.Tree(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if tree == nil {
		tree = []usecase.MenuNode{}
	}

	c.JSON(http.StatusOK, tree)
}

// UserTree handles GET /api/v1/menus/mine, the caller's navigation
// tree filtered by resolved permissions.
func (h *MenuHandler) UserTree(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	tree, err := h.menus.UserTree(c.Request.Context(), userID)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if tree == nil {
		tree = []usecase.MenuNode{}
	}

	c.JSON(http.StatusOK, tree)
}

func toMenuInput(req MenuRequest) domain.MenuInput {
	return domain.MenuInput{
		Name:           req.Name,
		Path:           req.Path,
		Component:      req.Component,
		Icon:           req.Icon,
		ParentID:       req.ParentID,
		SortOrder:      req.SortOrder,
		PermissionCode: req.PermissionCode,
		IsVisible:      req.IsVisible,
	}
}

func toMenuResponse(menu *domain.Menu) MenuResponse {
	return MenuResponse{
		ID:             menu.ID,
		Name:           menu.Name,
		Path:           menu.Path,
		Component:      menu.Component,
		Icon:           menu.Icon,
		ParentID:       menu.ParentID,
		SortOrder:      menu.SortOrder,
		PermissionCode: menu.PermissionCode,
		IsVisible:      menu.IsVisible,
		CreatedAt:      menu.CreatedAt,
		UpdatedAt:      menu.UpdatedAt,
		Version:        menu.Version,
	}
}
