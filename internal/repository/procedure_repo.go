package repository

import (
	"context"
	"time"

	"medcontrol-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Owner identifies which parent column of procedures a query filters on.
type Owner string

const (
	OwnerDoctor        Owner = "doctor_id"
	OwnerPatient       Owner = "patient_id"
	OwnerProcedureType Owner = "procedure_type_id"
)

// ProcedureFilter narrows procedure listings and summaries
type ProcedureFilter struct {
	DateFrom        *time.Time
	DateTo          *time.Time
	DoctorID        *uint
	PatientID       *uint
	ProcedureTypeID *uint
}

// TypeCount is a procedure count grouped by procedure type
type TypeCount struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

type ProcedureRepository struct {
	db *gorm.DB
}

func NewProcedureRepo(db *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ProcedureRepository) WithTx(tx *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{db: tx}
}

func (f ProcedureFilter) apply(query *gorm.DB) *gorm.DB {
	if f.DateFrom != nil {
		query = query.Where("procedures.date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		query = query.Where("procedures.date <= ?", *f.DateTo)
	}
	if f.DoctorID != nil {
		query = query.Where("procedures.doctor_id = ?", *f.DoctorID)
	}
	if f.PatientID != nil {
		query = query.Where("procedures.patient_id = ?", *f.PatientID)
	}
	if f.ProcedureTypeID != nil {
		query = query.Where("procedures.procedure_type_id = ?", *f.ProcedureTypeID)
	}
	return query
}

func (r *ProcedureRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("ProcedureType").
		Preload("Doctor").
		Preload("Patient")
}

// ListProcedures returns a page of procedures (newest first) and the total matching count
func (r *ProcedureRepository) ListProcedures(ctx context.Context, f ProcedureFilter, skip, limit int) ([]models.Procedure, int64, error) {
	var total int64
	if err := f.apply(r.db.WithContext(ctx).Model(&models.Procedure{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var procedures []models.Procedure
	err := f.apply(r.withRelations(ctx)).
		Order("procedures.date DESC, procedures.id DESC").
		Offset(skip).
		Limit(limit).
		Find(&procedures).Error
	return procedures, total, err
}

// ListByOwner returns a page of procedures that reference the given parent row
func (r *ProcedureRepository) ListByOwner(ctx context.Context, owner Owner, id uint, skip, limit int) ([]models.Procedure, error) {
	var procedures []models.Procedure
	err := r.withRelations(ctx).
		Where(string(owner)+" = ?", id).
		Order("date DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&procedures).Error
	return procedures, err
}

// CountByOwner counts procedures referencing the given parent row
func (r *ProcedureRepository) CountByOwner(ctx context.Context, owner Owner, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Procedure{}).
		Where(string(owner)+" = ?", id).
		Count(&count).Error
	return count, err
}

// LatestDateByOwner returns the date of the most recent procedure for a parent row, if any
func (r *ProcedureRepository) LatestDateByOwner(ctx context.Context, owner Owner, id uint) (*time.Time, error) {
	var procedure models.Procedure
	err := r.db.WithContext(ctx).
		Where(string(owner)+" = ?", id).
		Order("date DESC").
		Take(&procedure).Error
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &procedure.Date, nil
}

// GetProcedureByID retrieves a procedure with its doctor, patient and type
func (r *ProcedureRepository) GetProcedureByID(ctx context.Context, id uint) (*models.Procedure, error) {
	var procedure models.Procedure
	if err := r.withRelations(ctx).First(&procedure, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &procedure, nil
}

// CreateProcedure inserts a procedure without touching its associations
func (r *ProcedureRepository) CreateProcedure(ctx context.Context, procedure *models.Procedure) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(procedure).Error
}

// UpdateProcedure writes every column of an existing procedure
func (r *ProcedureRepository) UpdateProcedure(ctx context.Context, procedure *models.Procedure) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(procedure).Error
}

// DeleteProcedure permanently removes a procedure
func (r *ProcedureRepository) DeleteProcedure(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Procedure{}, id).Error
}

// CountProcedures counts procedures matching the filter
func (r *ProcedureRepository) CountProcedures(ctx context.Context, f ProcedureFilter) (int64, error) {
	var count int64
	err := f.apply(r.db.WithContext(ctx).Model(&models.Procedure{})).Count(&count).Error
	return count, err
}

// SumValues adds up procedure values matching the filter; missing values count as zero
func (r *ProcedureRepository) SumValues(ctx context.Context, f ProcedureFilter) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := f.apply(r.db.WithContext(ctx).Model(&models.Procedure{})).
		Where("procedures.value IS NOT NULL").
		Select("SUM(procedures.value)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// TopProcedureTypes returns the most frequent procedure types among matching procedures
func (r *ProcedureRepository) TopProcedureTypes(ctx context.Context, f ProcedureFilter, limit int) ([]TypeCount, error) {
	var rows []TypeCount
	err := f.apply(r.db.WithContext(ctx).Model(&models.Procedure{})).
		Select("procedure_types.id AS id, procedure_types.name AS name, COUNT(procedures.id) AS total").
		Joins("JOIN procedure_types ON procedure_types.id = procedures.procedure_type_id").
		Group("procedure_types.id, procedure_types.name").
		Order("total DESC, procedure_types.name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListProcedureDates returns the dates of matching procedures, oldest first
func (r *ProcedureRepository) ListProcedureDates(ctx context.Context, f ProcedureFilter) ([]time.Time, error) {
	var dates []time.Time
	err := f.apply(r.db.WithContext(ctx).Model(&models.Procedure{})).
		Order("procedures.date ASC").
		Pluck("procedures.date", &dates).Error
	return dates, err
}

// ListAllProcedures returns every matching procedure with relations, ordered by date then id
func (r *ProcedureRepository) ListAllProcedures(ctx context.Context, f ProcedureFilter) ([]models.Procedure, error) {
	var procedures []models.Procedure
	err := f.apply(r.withRelations(ctx)).
		Order("procedures.date ASC, procedures.id ASC").
		Find(&procedures).Error
	return procedures, err
}
