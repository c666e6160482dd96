package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/repository"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/pagination"
	"medcontrol-backend/pkg/utils"
)

type DoctorHandler struct {
	doctorService *service.DoctorService
}

func NewDoctorHandler(doctorService *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{doctorService: doctorService}
}

type DoctorRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=50"`
	Specialty     string  `json:"specialty" binding:"required,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Active        *bool   `json:"active"`
}

type DoctorPatchRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=255"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=50"`
	Specialty     *string `json:"specialty" binding:"omitempty,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Active        *bool   `json:"active"`
}

func (r DoctorRequest) input() service.DoctorInput {
	return service.DoctorInput{
		Name:          r.Name,
		LicenseNumber: r.LicenseNumber,
		Specialty:     r.Specialty,
		Email:         r.Email,
		Phone:         r.Phone,
		Active:        r.Active,
	}
}

// registryFilter reads search, active, skip and limit for registry lists
func registryFilter(c *gin.Context) repository.ListFilter {
	page := pagination.FromContext(c, pagination.Registry)
	return repository.ListFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		ActiveOnly: boolQuery(c, "active", true),
		Skip:       page.Skip,
		Limit:      page.Limit,
	}
}

// List returns doctors ordered by name
func (h *DoctorHandler) List(c *gin.Context) {
	doctors, err := h.doctorService.List(c.Request.Context(), registryFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, doctors)
}

// Get returns a doctor with procedure statistics
func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.doctorService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, detail)
}

// Procedures lists the doctor's procedures, newest first
func (h *DoctorHandler) Procedures(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page := pagination.FromContext(c, pagination.Records)
	procedures, err := h.doctorService.Procedures(c.Request.Context(), id, page.Skip, page.Limit)
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

func (h *DoctorHandler) Create(c *gin.Context) {
	var req DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doctor, err := h.doctorService.Create(c.Request.Context(), middleware.CurrentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, doctor)
}

// Replace handles PUT: every field is overwritten
func (h *DoctorHandler) Replace(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doctor, err := h.doctorService.Replace(c.Request.Context(), middleware.CurrentUser(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

// Patch handles PATCH: only provided fields change
func (h *DoctorHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req DoctorPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	doctor, err := h.doctorService.Patch(c.Request.Context(), middleware.CurrentUser(c), id, service.DoctorPatch{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		Specialty:     req.Specialty,
		Email:         req.Email,
		Phone:         req.Phone,
		Active:        req.Active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

// Delete deactivates the doctor, or removes it with ?force=true
func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	force := boolQuery(c, "force", false)
	if err := h.doctorService.Delete(c.Request.Context(), middleware.CurrentUser(c), id, force); err != nil {
		respondError(c, err)
		return
	}
	if force {
		utils.MessageResponse(c, "Doctor deleted")
		return
	}
	utils.MessageResponse(c, "Doctor deactivated")
}
