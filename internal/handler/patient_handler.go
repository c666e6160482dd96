package handler

import (
	"github.com/gin-gonic/gin"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/pagination"
	"medcontrol-backend/pkg/utils"
)

type PatientHandler struct {
	patientService *service.PatientService
}

func NewPatientHandler(patientService *service.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

type PatientRequest struct {
	Name      string  `json:"name" binding:"required,min=1,max=255"`
	TaxID     *string `json:"tax_id" binding:"omitempty,max=14"`
	BirthDate *string `json:"birth_date" binding:"omitempty,isodate"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	Active    *bool   `json:"active"`
}

type PatientPatchRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=255"`
	TaxID     *string `json:"tax_id" binding:"omitempty,max=14"`
	BirthDate *string `json:"birth_date" binding:"omitempty,isodate"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	Active    *bool   `json:"active"`
}

func (r PatientRequest) input() service.PatientInput {
	return service.PatientInput{
		Name:      r.Name,
		TaxID:     r.TaxID,
		BirthDate: parseDate(r.BirthDate),
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		Active:    r.Active,
	}
}

func (h *PatientHandler) List(c *gin.Context) {
	patients, err := h.patientService.List(c.Request.Context(), registryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.patientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, detail)
}

func (h *PatientHandler) Procedures(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page := pagination.FromContext(c, pagination.Records)
	procedures, err := h.patientService.Procedures(c.Request.Context(), id, page.Skip, page.Limit)
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

func (h *PatientHandler) Create(c *gin.Context) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	patient, err := h.patientService.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, patient)
}

func (h *PatientHandler) Replace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	patient, err := h.patientService.Replace(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, patient)
}

func (h *PatientHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req PatientPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	patient, err := h.patientService.Patch(c.Request.Context(), middleware.CurrentUser(c), id, service.PatientPatch{
		Name:      req.Name,
		TaxID:     req.TaxID,
		BirthDate: parseDate(req.BirthDate),
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		Active:    req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, patient)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	force := boolQuery(c, "force", false)
	if err := h.patientService.Delete(c.Request.Context(), middleware.CurrentUser(c), id, force); err != nil {
		respondError(c, err)
		return
	}
	if force {
		utils.MessageResponse(c, "Patient deleted")
		return
	}
	utils.MessageResponse(c, "Patient deactivated")
}
