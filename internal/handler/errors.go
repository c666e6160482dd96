package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

// respondError maps a service failure to its HTTP status. Unknown errors
// are attached to the context for logging and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}

	msg, ok := service.Message(err)
	if !ok || status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "Internal server error"
	}
	utils.ErrorResponse(c, status, msg)
}

// respondBindError reports the first failed field of a request body
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid field "+fe.Field()+": failed "+fe.Tag()+" check")
		return
	}
	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
}

// idParam reads a positive integer path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalIDQuery reads an optional positive integer query parameter
func optionalIDQuery(c *gin.Context, name string) (*uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	v := uint(id)
	return &v, true
}

// optionalDateQuery reads an optional YYYY-MM-DD query parameter
func optionalDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+", use YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

// boolQuery reads a boolean query parameter with a default
func boolQuery(c *gin.Context, name string, fallback bool) bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

// parseDate converts a validated YYYY-MM-DD string
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
