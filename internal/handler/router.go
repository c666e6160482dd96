package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/middleware"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

// Services groups everything the HTTP layer depends on
type Services struct {
	Auth           *service.AuthService
	Doctors        *service.DoctorService
	Patients       *service.PatientService
	ProcedureTypes *service.ProcedureTypeService
	Procedures     *service.ProcedureService
	Import         *service.ImportService
	Menus          *service.MenuService
	Dashboard      *service.DashboardService
}

// NewRouter builds the gin engine with middleware and every route mounted
// under cfg.Server.APIPrefix.
func NewRouter(cfg *config.Config, logger zerolog.Logger, s Services) (*gin.Engine, error) {
	RegisterValidators()

	loginLimit, err := middleware.RateLimit(cfg.RateLimit.Login)
	if err != nil {
		return nil, errors.Wrap(err, "login rate limit")
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "medcontrol-backend",
		})
	})

	authHandler := NewAuthHandler(s.Auth)
	doctorHandler := NewDoctorHandler(s.Doctors)
	patientHandler := NewPatientHandler(s.Patients)
	typeHandler := NewProcedureTypeHandler(s.ProcedureTypes)
	procedureHandler := NewProcedureHandler(s.Procedures)
	importHandler := NewImportHandler(s.Import)
	menuHandler := NewMenuHandler(s.Menus)
	dashboardHandler := NewDashboardHandler(s.Dashboard)

	api := r.Group(cfg.Server.APIPrefix)
	requireAuth := middleware.AuthMiddleware(s.Auth)
	requireAdmin := middleware.RequireAdmin()

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/login", loginLimit, authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(requireAuth)

	doctors := protected.Group("/doctors")
	{
		doctors.GET("", doctorHandler.List)
		doctors.POST("", doctorHandler.Create)
		doctors.GET("/:id", doctorHandler.Get)
		doctors.GET("/:id/procedures", doctorHandler.Procedures)
		doctors.PUT("/:id", doctorHandler.Replace)
		doctors.PATCH("/:id", doctorHandler.Patch)
		doctors.DELETE("/:id", doctorHandler.Delete)
	}

	patients := protected.Group("/patients")
	{
		patients.GET("", patientHandler.List)
		patients.POST("", patientHandler.Create)
		patients.GET("/:id", patientHandler.Get)
		patients.GET("/:id/procedures", patientHandler.Procedures)
		patients.PUT("/:id", patientHandler.Replace)
		patients.PATCH("/:id", patientHandler.Patch)
		patients.DELETE("/:id", patientHandler.Delete)
	}

	types := protected.Group("/procedure-types")
	{
		types.GET("", typeHandler.List)
		types.POST("", typeHandler.Create)
		types.GET("/:id", typeHandler.Get)
		types.GET("/:id/procedures", typeHandler.Procedures)
		types.PUT("/:id", typeHandler.Replace)
		types.PATCH("/:id", typeHandler.Patch)
		types.DELETE("/:id", typeHandler.Delete)
	}

	procedures := protected.Group("/procedures")
	{
		procedures.GET("", procedureHandler.List)
		procedures.POST("", procedureHandler.Create)
		procedures.GET("/stats/summary", procedureHandler.Summary)
		procedures.GET("/:id", procedureHandler.Get)
		procedures.PUT("/:id", procedureHandler.Replace)
		procedures.PATCH("/:id", procedureHandler.Patch)
		procedures.DELETE("/:id", procedureHandler.Delete)
	}

	imports := protected.Group("/import")
	{
		imports.POST("/procedures", importHandler.ImportProcedures)
		imports.POST("/procedures/file", importHandler.ImportFile)
	}

	menus := protected.Group("/menus")
	{
		menus.GET("/my-menus", menuHandler.MyMenus)

		// Admin-only routes
		menus.GET("/tree", requireAdmin, menuHandler.Tree)
		menus.GET("", requireAdmin, menuHandler.List)
		menus.POST("", requireAdmin, menuHandler.Create)
		menus.GET("/:id", requireAdmin, menuHandler.Get)
		menus.PUT("/:id", requireAdmin, menuHandler.Update)
		menus.DELETE("/:id", requireAdmin, menuHandler.Delete)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/stats", dashboardHandler.Stats)
		dashboard.GET("/monthly-report", dashboardHandler.MonthlyReport)
	}

	return r, nil
}
