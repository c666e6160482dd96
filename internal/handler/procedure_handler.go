package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/repository"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/pagination"
	"medcontrol-backend/pkg/utils"
)

type ProcedureHandler struct {
	procedureService *service.ProcedureService
}

func NewProcedureHandler(procedureService *service.ProcedureService) *ProcedureHandler {
	return &ProcedureHandler{procedureService: procedureService}
}

type ProcedureRequest struct {
	Date            string           `json:"date" binding:"required,isodate"`
	ProcedureTypeID uint             `json:"procedure_type_id" binding:"required"`
	DoctorID        uint             `json:"doctor_id" binding:"required"`
	PatientID       uint             `json:"patient_id" binding:"required"`
	Value           *decimal.Decimal `json:"value"`
	Notes           *string          `json:"notes"`
}

type ProcedurePatchRequest struct {
	Date            *string          `json:"date" binding:"omitempty,isodate"`
	ProcedureTypeID *uint            `json:"procedure_type_id" binding:"omitempty,min=1"`
	DoctorID        *uint            `json:"doctor_id" binding:"omitempty,min=1"`
	PatientID       *uint            `json:"patient_id" binding:"omitempty,min=1"`
	Value           *decimal.Decimal `json:"value"`
	Notes           *string          `json:"notes"`
}

func (r ProcedureRequest) input() service.ProcedureInput {
	in := service.ProcedureInput{
		ProcedureTypeID: r.ProcedureTypeID,
		DoctorID:        r.DoctorID,
		PatientID:       r.PatientID,
		Value:           r.Value,
		Notes:           r.Notes,
	}
	if d := parseDate(&r.Date); d != nil {
		in.Date = *d
	}
	return in
}

// procedureFilter reads the optional date range and parent id filters
func procedureFilter(c *gin.Context) (repository.ProcedureFilter, bool) {
	var f repository.ProcedureFilter
	var ok bool
	if f.DateFrom, ok = optionalDateQuery(c, "dateFrom"); !ok {
		return f, false
	}
	if f.DateTo, ok = optionalDateQuery(c, "dateTo"); !ok {
		return f, false
	}
	if f.DoctorID, ok = optionalIDQuery(c, "doctorId"); !ok {
		return f, false
	}
	if f.PatientID, ok = optionalIDQuery(c, "patientId"); !ok {
		return f, false
	}
	if f.ProcedureTypeID, ok = optionalIDQuery(c, "procedureTypeId"); !ok {
		return f, false
	}
	return f, true
}

// List returns a filtered page of procedures with the total count
func (h *ProcedureHandler) List(c *gin.Context) {
	f, ok := procedureFilter(c)
	if !ok {
		return
	}
	page := pagination.FromContext(c, pagination.Records)
	result, err := h.procedureService.List(c.Request.Context(), f, page.Skip, page.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

func (h *ProcedureHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	procedure, err := h.procedureService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, procedure)
}

func (h *ProcedureHandler) Create(c *gin.Context) {
	var req ProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	procedure, err := h.procedureService.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, procedure)
}

func (h *ProcedureHandler) Replace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	procedure, err := h.procedureService.Replace(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, procedure)
}

func (h *ProcedureHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req ProcedurePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	procedure, err := h.procedureService.Patch(c.Request.Context(), middleware.CurrentUser(c), id, service.ProcedurePatch{
		Date:            parseDate(req.Date),
		ProcedureTypeID: req.ProcedureTypeID,
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Value:           req.Value,
		Notes:           req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, procedure)
}

// Delete removes a procedure permanently
func (h *ProcedureHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.procedureService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	utils.MessageResponse(c, "Procedure deleted")
}

// Summary returns count, total value and top procedure types
func (h *ProcedureHandler) Summary(c *gin.Context) {
	f, ok := procedureFilter(c)
	if !ok {
		return
	}
	summary, err := h.procedureService.Summary(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, summary)
}
