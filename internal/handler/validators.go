package handler

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"medcontrol-backend/internal/models"
)

const dateLayout = "2006-01-02"

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request bodies:
// menurole (ADMIN or USER) and isodate (YYYY-MM-DD).
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("menurole", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(dateLayout, fl.Field().String())
			return err == nil
		})
	})
}
