package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/pagination"
	"medcontrol-backend/pkg/utils"
)

type ProcedureTypeHandler struct {
	typeService *service.ProcedureTypeService
}

func NewProcedureTypeHandler(typeService *service.ProcedureTypeService) *ProcedureTypeHandler {
	return &ProcedureTypeHandler{typeService: typeService}
}

type ProcedureTypeRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=255"`
	Description    *string         `json:"description"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
	Active         *bool           `json:"active"`
}

type ProcedureTypePatchRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Description    *string          `json:"description"`
	ReferencePrice *decimal.Decimal `json:"reference_price"`
	Active         *bool            `json:"active"`
}

func (r ProcedureTypeRequest) input() service.ProcedureTypeInput {
	return service.ProcedureTypeInput{
		Name:           r.Name,
		Description:    r.Description,
		ReferencePrice: r.ReferencePrice,
		Active:         r.Active,
	}
}

func (h *ProcedureTypeHandler) List(c *gin.Context) {
	types, err := h.typeService.List(c.Request.Context(), registryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, types)
}

func (h *ProcedureTypeHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.typeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, detail)
}

func (h *ProcedureTypeHandler) Procedures(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page := pagination.FromContext(c, pagination.Records)
	procedures, err := h.typeService.Procedures(c.Request.Context(), id, page.Skip, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"procedures": procedures,
		"total":      len(procedures),
		"skip":       page.Skip,
		"limit":      page.Limit,
	})
}

func (h *ProcedureTypeHandler) Create(c *gin.Context) {
	var req ProcedureTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pt, err := h.typeService.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, pt)
}

func (h *ProcedureTypeHandler) Replace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProcedureTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pt, err := h.typeService.Replace(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, pt)
}

func (h *ProcedureTypeHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProcedureTypePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pt, err := h.typeService.Patch(c.Request.Context(), middleware.CurrentUser(c), id, service.ProcedureTypePatch{
		Name:           req.Name,
		Description:    req.Description,
		ReferencePrice: req.ReferencePrice,
		Active:         req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, pt)
}

func (h *ProcedureTypeHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	force := boolQuery(c, "force", false)
	if err := h.typeService.Delete(c.Request.Context(), middleware.CurrentUser(c), id, force); err != nil {
		respondError(c, err)
		return
	}
	if force {
		utils.MessageResponse(c, "Procedure type deleted")
		return
	}
	utils.MessageResponse(c, "Procedure type deactivated")
}
