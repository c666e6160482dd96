package repository

import (
	"context"

	"medcontrol-backend/internal/models"

	"gorm.io/gorm"
)

// DoctorCount is a procedure count grouped by doctor
type DoctorCount struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Total int64  `json:"totalProcedures"`
}

// Totals holds registry sizes shown on the dashboard
type Totals struct {
	Doctors        int64
	Patients       int64
	ProcedureTypes int64
}

// ReportRepository runs the read-only aggregate queries behind the dashboard
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CountTotals counts active doctors, all patients and active procedure types
func (r *ReportRepository) CountTotals(ctx context.Context) (Totals, error) {
	var t Totals
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Doctor{}).Where("active = ?", true).Count(&t.Doctors).Error; err != nil {
		return t, err
	}
	if err := db.Model(&models.Patient{}).Count(&t.Patients).Error; err != nil {
		return t, err
	}
	if err := db.Model(&models.ProcedureType{}).Where("active = ?", true).Count(&t.ProcedureTypes).Error; err != nil {
		return t, err
	}
	return t, nil
}

// TopDoctors returns the doctors with the most procedures
func (r *ReportRepository) TopDoctors(ctx context.Context, limit int) ([]DoctorCount, error) {
	var rows []DoctorCount
	err := r.db.WithContext(ctx).Model(&models.Procedure{}).
		Select("doctors.id AS id, doctors.name AS name, COUNT(procedures.id) AS total").
		Joins("JOIN doctors ON doctors.id = procedures.doctor_id").
		Group("doctors.id, doctors.name").
		Order("total DESC, doctors.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// LatestProcedures returns the most recent procedures with their relations
func (r *ReportRepository) LatestProcedures(ctx context.Context, limit int) ([]models.Procedure, error) {
	var procedures []models.Procedure
	err := r.db.WithContext(ctx).
		Preload("ProcedureType").
		Preload("Doctor").
		Preload("Patient").
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&procedures).Error
	return procedures, err
}
