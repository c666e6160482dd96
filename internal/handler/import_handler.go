package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

// maxImportFileSize caps uploaded spreadsheets
const maxImportFileSize = 10 << 20

type ImportHandler struct {
	importService *service.ImportService
}

func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

type ImportRequest struct {
	Rows []service.ImportRow `json:"rows" binding:"required"`
}

// ImportProcedures handles a JSON batch of rows
func (h *ImportHandler) ImportProcedures(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.run(c, req.Rows)
}

// ImportFile handles a multipart upload (field "file") of a .csv or .xlsx sheet
func (h *ImportHandler) ImportFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "File field \"file\" is required")
		return
	}
	if header.Size > maxImportFileSize {
		utils.ErrorResponse(c, http.StatusBadRequest, "File is too large")
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Could not open uploaded file")
		return
	}
	defer f.Close()

	rows, err := service.ParseImportFile(header.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	h.run(c, rows)
}

func (h *ImportHandler) run(c *gin.Context, rows []service.ImportRow) {
	result, err := h.importService.ImportProcedures(c.Request.Context(), middleware.CurrentUser(c), rows)
	if err != nil {
		if errors.Is(err, service.ErrImportCommit) {
			_ = c.Error(err)
			utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save import, no rows were stored")
			return
		}
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}
