package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

var (
	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medcontrol",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Import rows processed, by outcome.",
	}, []string{"outcome"})

	importBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medcontrol",
		Subsystem: "import",
		Name:      "batches_total",
		Help:      "Import batches, by final transaction status.",
	}, []string{"status"})
)

// ErrImportCommit wraps a failure to persist an import batch. Nothing from
// the batch is stored when it is returned.
var ErrImportCommit = errors.New("import batch could not be saved")

// Single-digit layout elements also accept two digits, so "2024-3-1" and
// "01/03/2024" both parse.
var importDateLayouts = []string{"2006-1-2", "2-1-2006"}

// ParseImportDate accepts YYYY-MM-DD first, then DD/MM/YYYY, with or without
// zero padding on day and month.
func ParseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date format: %s. Use YYYY-MM-DD or DD/MM/YYYY", s)
}

// ImportRow is one line of a procedure import batch
type ImportRow struct {
	Date              string `json:"date"`
	ProcedureTypeName string `json:"procedureTypeName"`
	DoctorName        string `json:"doctorName"`
	PatientName       string `json:"patientName"`
}

// RowError reports why a row was skipped. Row is 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type CreatedCounts struct {
	Doctors        int `json:"doctors"`
	Patients       int `json:"patients"`
	ProcedureTypes int `json:"procedureTypes"`
	Procedures     int `json:"procedures"`
}

type ImportResult struct {
	Success  int           `json:"success"`
	Errors   []RowError    `json:"errors"`
	Created  CreatedCounts `json:"created"`
	Warnings []string      `json:"warnings"`
}

// createdSet tracks ids of support rows created during one batch
type createdSet struct {
	doctors  map[uint]struct{}
	patients map[uint]struct{}
	types    map[uint]struct{}
}

func newCreatedSet() *createdSet {
	return &createdSet{
		doctors:  map[uint]struct{}{},
		patients: map[uint]struct{}{},
		types:    map[uint]struct{}{},
	}
}

// rowOutcome is what a single staged row created
type rowOutcome struct {
	doctorID, patientID, typeID uint
}

func (s *createdSet) add(o rowOutcome) {
	if o.doctorID != 0 {
		s.doctors[o.doctorID] = struct{}{}
	}
	if o.patientID != 0 {
		s.patients[o.patientID] = struct{}{}
	}
	if o.typeID != 0 {
		s.types[o.typeID] = struct{}{}
	}
}

type ImportService struct {
	db         *gorm.DB
	resolver   *Resolver
	procedures *repository.ProcedureRepository
	auditRepo  *repository.AuditRepository
	commitTx   func(tx *gorm.DB) error
	rollbackTo func(tx *gorm.DB, savepoint string) error
}

func NewImportService(
	db *gorm.DB,
	resolver *Resolver,
	procedures *repository.ProcedureRepository,
	auditRepo *repository.AuditRepository,
) *ImportService {
	return &ImportService{
		db:         db,
		resolver:   resolver,
		procedures: procedures,
		auditRepo:  auditRepo,
		commitTx:   func(tx *gorm.DB) error { return tx.Commit().Error },
		// The dialectors' RollbackTo drops the statement error.
		rollbackTo: func(tx *gorm.DB, savepoint string) error {
			return tx.Exec("ROLLBACK TO SAVEPOINT " + savepoint).Error
		},
	}
}

// missingField returns the message for the first required field that is blank
func missingField(row ImportRow) string {
	switch {
	case strings.TrimSpace(row.Date) == "":
		return "date is required"
	case strings.TrimSpace(row.ProcedureTypeName) == "":
		return "procedure type name is required"
	case strings.TrimSpace(row.DoctorName) == "":
		return "doctor name is required"
	case strings.TrimSpace(row.PatientName) == "":
		return "patient name is required"
	}
	return ""
}

// ImportProcedures stages every valid row inside one transaction and commits
// once at the end. Row failures are collected and do not stop the batch.
// When the transaction itself breaks (savepoint, row rollback or commit
// fails) the whole batch is discarded and ErrImportCommit is returned.
func (s *ImportService) ImportProcedures(ctx context.Context, actor *models.User, rows []ImportRow) (*ImportResult, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "begin import")
	}

	resolver := s.resolver.WithTx(tx)
	procedures := s.procedures.WithTx(tx)
	created := newCreatedSet()
	result := &ImportResult{Errors: []RowError{}, Warnings: []string{}}

	fail := func(row int, msg string) {
		result.Errors = append(result.Errors, RowError{Row: row, Message: msg})
		importRows.WithLabelValues("failed").Inc()
	}

	for i, row := range rows {
		idx := i + 1

		if msg := missingField(row); msg != "" {
			fail(idx, msg)
			continue
		}
		date, err := ParseImportDate(row.Date)
		if err != nil {
			fail(idx, err.Error())
			continue
		}

		savepoint := fmt.Sprintf("import_row_%d", idx)
		if err := tx.SavePoint(savepoint).Error; err != nil {
			return nil, s.abort(tx, errors.Wrapf(err, "row %d: savepoint", idx))
		}
		outcome, err := stageRow(ctx, resolver, procedures, row, date)
		if err != nil {
			// Undo whatever the row created before failing.
			if rbErr := s.rollbackTo(tx, savepoint); rbErr != nil {
				return nil, s.abort(tx, errors.Wrapf(rbErr, "row %d: rollback", idx))
			}
			fail(idx, "unexpected error: "+err.Error())
			continue
		}

		created.add(outcome)
		result.Success++
		importRows.WithLabelValues("imported").Inc()
	}

	if err := s.commitTx(tx); err != nil {
		return nil, s.abort(tx, err)
	}
	importBatches.WithLabelValues("committed").Inc()

	result.Created = CreatedCounts{
		Doctors:        len(created.doctors),
		Patients:       len(created.patients),
		ProcedureTypes: len(created.types),
		Procedures:     result.Success,
	}
	result.Warnings = importWarnings(result.Created)

	recordAudit(ctx, s.auditRepo, actor, "procedures_import",
		fmt.Sprintf("Imported %d of %d row(s), %d error(s)", result.Success, len(rows), len(result.Errors)))

	return result, nil
}

// abort rolls the batch back and reports it as unsaved.
func (s *ImportService) abort(tx *gorm.DB, cause error) error {
	tx.Rollback()
	importBatches.WithLabelValues("rolled_back").Inc()
	return fmt.Errorf("%w: %v", ErrImportCommit, cause)
}

// stageRow resolves the row's support entities and inserts its procedure.
func stageRow(
	ctx context.Context,
	resolver *Resolver,
	procedures *repository.ProcedureRepository,
	row ImportRow,
	date time.Time,
) (rowOutcome, error) {
	var out rowOutcome

	doctor, isNew, err := resolver.Doctor(ctx, row.DoctorName)
	if err != nil {
		return out, err
	}
	if isNew {
		out.doctorID = doctor.ID
	}

	patient, isNew, err := resolver.Patient(ctx, row.PatientName)
	if err != nil {
		return out, err
	}
	if isNew {
		out.patientID = patient.ID
	}

	pt, isNew, err := resolver.ProcedureType(ctx, row.ProcedureTypeName)
	if err != nil {
		return out, err
	}
	if isNew {
		out.typeID = pt.ID
	}

	procedure := &models.Procedure{
		Date:            date,
		ProcedureTypeID: pt.ID,
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		Value:           referenceValue(pt.ReferencePrice),
	}
	if err := procedures.CreateProcedure(ctx, procedure); err != nil {
		return out, errors.Wrap(err, "create procedure")
	}
	return out, nil
}

// referenceValue is the default procedure value: the type's reference price, or null when zero.
func referenceValue(price decimal.Decimal) decimal.NullDecimal {
	if price.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price)
}

func importWarnings(c CreatedCounts) []string {
	warnings := []string{}
	if c.Doctors > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d doctor(s) were created automatically. Edit the records to add license number and specialty.", c.Doctors))
	}
	if c.Patients > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d patient(s) were created automatically. Complete their registration data (tax id, phone, etc).", c.Patients))
	}
	if c.ProcedureTypes > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d procedure type(s) were created automatically. Configure their reference prices.", c.ProcedureTypes))
	}
	return warnings
}
