package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/pagination"
	"medcontrol-backend/pkg/utils"
)

type MenuHandler struct {
	menuService *service.MenuService
}

func NewMenuHandler(menuService *service.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

type MenuCreateRequest struct {
	Label    string   `json:"label" binding:"required,min=1,max=100"`
	Icon     *string  `json:"icon" binding:"omitempty,max=50"`
	To       *string  `json:"to" binding:"omitempty,max=255"`
	Order    int      `json:"order" binding:"min=0"`
	Roles    []string `json:"roles" binding:"omitempty,dive,menurole"`
	IsActive *bool    `json:"is_active"`
	ParentID *uint    `json:"parent_id"`
}

type MenuUpdateRequest struct {
	Label    *string            `json:"label" binding:"omitempty,min=1,max=100"`
	Icon     *string            `json:"icon" binding:"omitempty,max=50"`
	To       *string            `json:"to" binding:"omitempty,max=255"`
	Order    *int               `json:"order" binding:"omitempty,min=0"`
	Roles    *[]string          `json:"roles" binding:"omitempty,dive,menurole"`
	IsActive *bool              `json:"is_active"`
	ParentID service.OptionalID `json:"parent_id"`
}

// MyMenus returns the menu tree visible to the caller
func (h *MenuHandler) MyMenus(c *gin.Context) {
	tree, err := h.menuService.MyMenus(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, tree)
}

// Tree returns the full tree (admin only)
func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.menuService.Tree(c.Request.Context(), boolQuery(c, "showInactive", false))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"items": tree,
		"total": len(tree),
	})
}

// List returns a flat page of menu items (admin only)
func (h *MenuHandler) List(c *gin.Context) {
	page := pagination.FromContext(c, pagination.Registry)
	items, err := h.menuService.List(c.Request.Context(),
		strings.TrimSpace(c.Query("search")), boolQuery(c, "showInactive", false), page.Skip, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, items)
}

func (h *MenuHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.menuService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

func (h *MenuHandler) Create(c *gin.Context) {
	var req MenuCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	item, err := h.menuService.Create(c.Request.Context(), middleware.CurrentUser(c), service.MenuInput{
		Label:    req.Label,
		Icon:     req.Icon,
		To:       req.To,
		Order:    req.Order,
		Roles:    req.Roles,
		IsActive: active,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, item)
}

// Update changes only the fields present in the body
func (h *MenuHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req MenuUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.menuService.Update(c.Request.Context(), middleware.CurrentUser(c), id, service.MenuPatch{
		Label:    req.Label,
		Icon:     req.Icon,
		To:       req.To,
		Order:    req.Order,
		Roles:    req.Roles,
		IsActive: req.IsActive,
		ParentID: req.ParentID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, item)
}

// Delete removes the item and its whole subtree
func (h *MenuHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.menuService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Menu item deleted")
}
