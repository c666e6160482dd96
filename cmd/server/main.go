package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/database"
	"medcontrol-backend/internal/handler"
	"medcontrol-backend/internal/repository"
	"medcontrol-backend/internal/service"
	"medcontrol-backend/pkg/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medcontrol",
		Short:        "MedControl medical records API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())
	rootCmd.AddCommand(seedMenusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Server.GinMode == gin.DebugMode {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

// setup loads configuration and opens the database
func setup() (*config.Config, zerolog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	logger := newLogger(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, logger, nil, err
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")
	return cfg, logger, db, nil
}

func buildServices(cfg *config.Config, db *gorm.DB) (handler.Services, error) {
	tokens, err := utils.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenExpiry())
	if err != nil {
		return handler.Services{}, err
	}

	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	doctorRepo := repository.NewDoctorRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	typeRepo := repository.NewProcedureTypeRepo(db)
	procedureRepo := repository.NewProcedureRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	reportRepo := repository.NewReportRepo(db)

	resolver := service.NewResolver(doctorRepo, patientRepo, typeRepo)

	return handler.Services{
		Auth:           service.NewAuthService(userRepo, auditRepo, tokens),
		Doctors:        service.NewDoctorService(doctorRepo, procedureRepo, auditRepo),
		Patients:       service.NewPatientService(patientRepo, procedureRepo, auditRepo),
		ProcedureTypes: service.NewProcedureTypeService(typeRepo, procedureRepo, auditRepo),
		Procedures:     service.NewProcedureService(procedureRepo, doctorRepo, patientRepo, typeRepo, auditRepo),
		Import:         service.NewImportService(db, resolver, procedureRepo, auditRepo),
		Menus:          service.NewMenuService(menuRepo, auditRepo),
		Dashboard:      service.NewDashboardService(reportRepo, procedureRepo),
	}, nil
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create or update tables before serving")
	return cmd
}

func runServer(migrate bool) error {
	cfg, logger, db, err := setup()
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return err
	}

	if migrate {
		if err := database.Migrate(db); err != nil {
			logger.Error().Err(err).Msg("migration failed")
			return err
		}
	}

	services, err := buildServices(cfg, db)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.GinMode)
	router, err := handler.NewRouter(cfg, logger, services)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("prefix", cfg.Server.APIPrefix).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			logger.Info().Msg("migration complete")
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var (
		email    string
		name     string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			services, err := buildServices(cfg, db)
			if err != nil {
				return err
			}

			user, err := services.Auth.CreateUser(cmd.Context(), email, name, password, admin)
			if err != nil {
				return err
			}
			logger.Info().Uint("id", user.ID).Str("email", user.Email).Bool("admin", user.IsAdmin).Msg("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the ADMIN role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedMenusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-menus",
		Short: "Insert the default navigation menu when the table is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			n, err := database.SeedMenus(db)
			if err != nil {
				return err
			}
			if n == 0 {
				logger.Info().Msg("menu items already present, nothing seeded")
				return nil
			}
			logger.Info().Int("items", n).Msg("menu seeded")
			return nil
		},
	}
}
