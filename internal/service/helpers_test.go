package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medcontrol-backend/internal/config"
	"medcontrol-backend/internal/database"
	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			URL:          filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Server: config.ServerConfig{GinMode: "release"},
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db         *gorm.DB
	users      *repository.UserRepository
	audit      *repository.AuditRepository
	doctors    *repository.DoctorRepository
	patients   *repository.PatientRepository
	types      *repository.ProcedureTypeRepository
	procedures *repository.ProcedureRepository
	menus      *repository.MenuRepository
	reports    *repository.ReportRepository
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:         db,
		users:      repository.NewUserRepo(db),
		audit:      repository.NewAuditRepo(db),
		doctors:    repository.NewDoctorRepo(db),
		patients:   repository.NewPatientRepo(db),
		types:      repository.NewProcedureTypeRepo(db),
		procedures: repository.NewProcedureRepo(db),
		menus:      repository.NewMenuRepo(db),
		reports:    repository.NewReportRepo(db),
	}
}

func (f *fixture) importService() *ImportService {
	return NewImportService(f.db, NewResolver(f.doctors, f.patients, f.types), f.procedures, f.audit)
}

func (f *fixture) doctor(t *testing.T, name string) *models.Doctor {
	t.Helper()
	d := &models.Doctor{Name: name, Specialty: "Cardiology", Active: true}
	require.NoError(t, f.doctors.CreateDoctor(context.Background(), d))
	return d
}

func (f *fixture) patient(t *testing.T, name string) *models.Patient {
	t.Helper()
	p := &models.Patient{Name: name, Active: true}
	require.NoError(t, f.patients.CreatePatient(context.Background(), p))
	return p
}

func (f *fixture) procedureType(t *testing.T, name string, price string) *models.ProcedureType {
	t.Helper()
	pt := &models.ProcedureType{Name: name, ReferencePrice: decimal.RequireFromString(price), Active: true}
	require.NoError(t, f.types.CreateProcedureType(context.Background(), pt))
	return pt
}

func (f *fixture) procedure(t *testing.T, date string, pt *models.ProcedureType, d *models.Doctor, p *models.Patient) *models.Procedure {
	t.Helper()
	proc := &models.Procedure{
		Date:            mustDate(t, date),
		ProcedureTypeID: pt.ID,
		DoctorID:        d.ID,
		PatientID:       p.ID,
		Value:           referenceValue(pt.ReferencePrice),
	}
	require.NoError(t, f.procedures.CreateProcedure(context.Background(), proc))
	return proc
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
