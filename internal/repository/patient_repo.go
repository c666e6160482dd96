package repository

import (
	"context"

	"medcontrol-backend/internal/models"

	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *PatientRepository) WithTx(tx *gorm.DB) *PatientRepository {
	return &PatientRepository{db: tx}
}

// ListPatients retrieves patients ordered by name
// Search matches the name or the tax id
func (r *PatientRepository) ListPatients(ctx context.Context, f ListFilter) ([]models.Patient, error) {
	query := r.db.WithContext(ctx).Model(&models.Patient{})
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query = query.Where("name_key LIKE ? ESCAPE '!' OR LOWER(tax_id) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	var patients []models.Patient
	err := query.Order("name ASC").Offset(f.Skip).Limit(f.Limit).Find(&patients).Error
	return patients, err
}

// GetPatientByID retrieves a patient by ID regardless of its active flag
func (r *PatientRepository) GetPatientByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := r.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &patient, nil
}

// TaxIDTaken reports whether another patient already holds the tax id
func (r *PatientRepository) TaxIDTaken(ctx context.Context, taxID string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Patient{}).Where("tax_id = ?", taxID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// FindPatientByName finds the first patient sharing name's NameKey
func (r *PatientRepository) FindPatientByName(ctx context.Context, name string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("name_key = ?", models.NameKey(name)).
		First(&patient).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &patient, nil
}

// CreatePatient creates a new patient
func (r *PatientRepository) CreatePatient(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Create(patient).Error
}

// UpdatePatient writes every column of an existing patient
func (r *PatientRepository) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	return r.db.WithContext(ctx).Save(patient).Error
}

// SoftDeletePatient marks a patient as inactive
func (r *PatientRepository) SoftDeletePatient(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// DeletePatient permanently removes a patient
func (r *PatientRepository) DeletePatient(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Patient{}, id).Error
}
