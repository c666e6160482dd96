package repository

import (
	"context"

	"medcontrol-backend/internal/models"

	"gorm.io/gorm"
)

type ProcedureTypeRepository struct {
	db *gorm.DB
}

func NewProcedureTypeRepo(db *gorm.DB) *ProcedureTypeRepository {
	return &ProcedureTypeRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ProcedureTypeRepository) WithTx(tx *gorm.DB) *ProcedureTypeRepository {
	return &ProcedureTypeRepository{db: tx}
}

// ListProcedureTypes retrieves procedure types ordered by name
func (r *ProcedureTypeRepository) ListProcedureTypes(ctx context.Context, f ListFilter) ([]models.ProcedureType, error) {
	query := r.db.WithContext(ctx).Model(&models.ProcedureType{})
	if f.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if f.Search != "" {
		query = query.Where("name_key LIKE ? ESCAPE '!'", containsPattern(f.Search))
	}

	var types []models.ProcedureType
	err := query.Order("name ASC").Offset(f.Skip).Limit(f.Limit).Find(&types).Error
	return types, err
}

// GetProcedureTypeByID retrieves a procedure type by ID
func (r *ProcedureTypeRepository) GetProcedureTypeByID(ctx context.Context, id uint) (*models.ProcedureType, error) {
	var pt models.ProcedureType
	if err := r.db.WithContext(ctx).First(&pt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &pt, nil
}

// NameTaken reports whether another procedure type has the same NameKey
func (r *ProcedureTypeRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProcedureType{}).
		Where("name_key = ?", models.NameKey(name))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// FindProcedureTypeByName finds the type sharing name's NameKey
func (r *ProcedureTypeRepository) FindProcedureTypeByName(ctx context.Context, name string) (*models.ProcedureType, error) {
	var pt models.ProcedureType
	err := r.db.WithContext(ctx).
		Where("name_key = ?", models.NameKey(name)).
		First(&pt).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &pt, nil
}

// CreateProcedureType creates a new procedure type
func (r *ProcedureTypeRepository) CreateProcedureType(ctx context.Context, pt *models.ProcedureType) error {
	return r.db.WithContext(ctx).Create(pt).Error
}

// UpdateProcedureType writes every column of an existing procedure type
func (r *ProcedureTypeRepository) UpdateProcedureType(ctx context.Context, pt *models.ProcedureType) error {
	return r.db.WithContext(ctx).Save(pt).Error
}

// SoftDeleteProcedureType marks a procedure type as inactive
func (r *ProcedureTypeRepository) SoftDeleteProcedureType(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.ProcedureType{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// DeleteProcedureType permanently removes a procedure type
func (r *ProcedureTypeRepository) DeleteProcedureType(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.ProcedureType{}, id).Error
}
