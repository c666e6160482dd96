package repository

import (
	"context"

	"medcontrol-backend/internal/models"

	"gorm.io/gorm"
)

// ListFilter narrows registry listings (doctors, patients, procedure types).
type ListFilter struct {
	Search     string
	ActiveOnly bool
	Skip       int
	Limit      int
}

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DoctorRepository) WithTx(tx *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: tx}
}

// ListDoctors retrieves doctors ordered by name
// Search matches the name or the license number
func (r *DoctorRepository) ListDoctors(ctx context.Context, f ListFilter) ([]models.Doctor, error) {
	query := r.db.WithContext(ctx).Model(&models.Doctor{})
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query = query.Where("name_key LIKE ? ESCAPE '!' OR LOWER(license_number) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	var doctors []models.Doctor
	err := query.Order("name ASC").Offset(f.Skip).Limit(f.Limit).Find(&doctors).Error
	return doctors, err
}

// GetDoctorByID retrieves a doctor by ID regardless of its active flag
func (r *DoctorRepository) GetDoctorByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &doctor, nil
}

// LicenseTaken reports whether another doctor already holds the license number
func (r *DoctorRepository) LicenseTaken(ctx context.Context, license string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Doctor{}).Where("license_number = ?", license)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// FindDoctorByName finds the first doctor sharing name's NameKey
func (r *DoctorRepository) FindDoctorByName(ctx context.Context, name string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := r.db.WithContext(ctx).
		Where("name_key = ?", models.NameKey(name)).
		First(&doctor).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &doctor, nil
}

// CreateDoctor creates a new doctor
func (r *DoctorRepository) CreateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Create(doctor).Error
}

// UpdateDoctor writes every column of an existing doctor
func (r *DoctorRepository) UpdateDoctor(ctx context.Context, doctor *models.Doctor) error {
	return r.db.WithContext(ctx).Save(doctor).Error
}

// SoftDeleteDoctor marks a doctor as inactive
func (r *DoctorRepository) SoftDeleteDoctor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Doctor{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// DeleteDoctor permanently removes a doctor
func (r *DoctorRepository) DeleteDoctor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Doctor{}, id).Error
}
