package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

type ProcedureInput struct {
	Date            time.Time
	ProcedureTypeID uint
	DoctorID        uint
	PatientID       uint
	Value           *decimal.Decimal
	Notes           *string
}

type ProcedurePatch struct {
	Date            *time.Time
	ProcedureTypeID *uint
	DoctorID        *uint
	PatientID       *uint
	Value           *decimal.Decimal
	Notes           *string
}

type ProcedurePage struct {
	Procedures []models.Procedure `json:"procedures"`
	Total      int64              `json:"total"`
	Skip       int                `json:"skip"`
	Limit      int                `json:"limit"`
}

type ProcedureSummary struct {
	TotalProcedures   int64                  `json:"totalProcedures"`
	TotalValue        decimal.Decimal        `json:"totalValue"`
	TopProcedureTypes []repository.TypeCount `json:"topProcedureTypes"`
}

type ProcedureService struct {
	procedureRepo *repository.ProcedureRepository
	doctorRepo    *repository.DoctorRepository
	patientRepo   *repository.PatientRepository
	typeRepo      *repository.ProcedureTypeRepository
	auditRepo     *repository.AuditRepository
}

func NewProcedureService(
	procedureRepo *repository.ProcedureRepository,
	doctorRepo *repository.DoctorRepository,
	patientRepo *repository.PatientRepository,
	typeRepo *repository.ProcedureTypeRepository,
	auditRepo *repository.AuditRepository,
) *ProcedureService {
	return &ProcedureService{
		procedureRepo: procedureRepo,
		doctorRepo:    doctorRepo,
		patientRepo:   patientRepo,
		typeRepo:      typeRepo,
		auditRepo:     auditRepo,
	}
}

// List returns a page of procedures, newest first, with the total match count
func (s *ProcedureService) List(ctx context.Context, f repository.ProcedureFilter, skip, limit int) (*ProcedurePage, error) {
	procedures, total, err := s.procedureRepo.ListProcedures(ctx, f, skip, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list procedures")
	}
	return &ProcedurePage{Procedures: procedures, Total: total, Skip: skip, Limit: limit}, nil
}

func (s *ProcedureService) Get(ctx context.Context, id uint) (*models.Procedure, error) {
	procedure, err := s.procedureRepo.GetProcedureByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure not found")
	}
	return procedure, nil
}

func (s *ProcedureService) Create(ctx context.Context, actor *models.User, in ProcedureInput) (*models.Procedure, error) {
	procedure := &models.Procedure{}
	applyProcedureInput(procedure, in)
	if err := s.checkReferences(ctx, procedure); err != nil {
		return nil, err
	}
	if err := s.procedureRepo.CreateProcedure(ctx, procedure); err != nil {
		return nil, errors.Wrap(err, "create procedure")
	}

	recordAudit(ctx, s.auditRepo, actor, "procedure_create", fmt.Sprintf("Procedure %d created", procedure.ID))
	return s.Get(ctx, procedure.ID)
}

func (s *ProcedureService) Replace(ctx context.Context, actor *models.User, id uint, in ProcedureInput) (*models.Procedure, error) {
	procedure, err := s.procedureRepo.GetProcedureByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure not found")
	}
	applyProcedureInput(procedure, in)
	return s.save(ctx, actor, procedure)
}

func (s *ProcedureService) Patch(ctx context.Context, actor *models.User, id uint, p ProcedurePatch) (*models.Procedure, error) {
	procedure, err := s.procedureRepo.GetProcedureByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure not found")
	}

	if p.Date != nil {
		procedure.Date = dateOnly(*p.Date)
	}
	if p.ProcedureTypeID != nil {
		procedure.ProcedureTypeID = *p.ProcedureTypeID
	}
	if p.DoctorID != nil {
		procedure.DoctorID = *p.DoctorID
	}
	if p.PatientID != nil {
		procedure.PatientID = *p.PatientID
	}
	if p.Value != nil {
		procedure.Value = decimal.NewNullDecimal(p.Value.Round(2))
	}
	if p.Notes != nil {
		procedure.Notes = optionalString(p.Notes)
	}
	return s.save(ctx, actor, procedure)
}

func (s *ProcedureService) save(ctx context.Context, actor *models.User, procedure *models.Procedure) (*models.Procedure, error) {
	if err := s.checkReferences(ctx, procedure); err != nil {
		return nil, err
	}
	if err := s.procedureRepo.UpdateProcedure(ctx, procedure); err != nil {
		return nil, errors.Wrap(err, "update procedure")
	}

	recordAudit(ctx, s.auditRepo, actor, "procedure_update", fmt.Sprintf("Procedure %d updated", procedure.ID))
	return s.Get(ctx, procedure.ID)
}

// checkReferences ensures the doctor, patient and procedure type exist
func (s *ProcedureService) checkReferences(ctx context.Context, p *models.Procedure) error {
	if _, err := s.doctorRepo.GetDoctorByID(ctx, p.DoctorID); err != nil {
		return lookup(err, fmt.Sprintf("doctor with id %d not found", p.DoctorID))
	}
	if _, err := s.patientRepo.GetPatientByID(ctx, p.PatientID); err != nil {
		return lookup(err, fmt.Sprintf("patient with id %d not found", p.PatientID))
	}
	if _, err := s.typeRepo.GetProcedureTypeByID(ctx, p.ProcedureTypeID); err != nil {
		return lookup(err, fmt.Sprintf("procedure type with id %d not found", p.ProcedureTypeID))
	}
	return nil
}

// Delete removes a procedure permanently
func (s *ProcedureService) Delete(ctx context.Context, actor *models.User, id uint) error {
	if _, err := s.procedureRepo.GetProcedureByID(ctx, id); err != nil {
		return lookup(err, "procedure not found")
	}
	if err := s.procedureRepo.DeleteProcedure(ctx, id); err != nil {
		return errors.Wrap(err, "delete procedure")
	}

	recordAudit(ctx, s.auditRepo, actor, "procedure_delete", fmt.Sprintf("Procedure %d deleted", id))
	return nil
}

// Summary counts and sums the matching procedures and lists the five most frequent types
func (s *ProcedureService) Summary(ctx context.Context, f repository.ProcedureFilter) (*ProcedureSummary, error) {
	total, err := s.procedureRepo.CountProcedures(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "count procedures")
	}
	value, err := s.procedureRepo.SumValues(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "sum procedure values")
	}
	top, err := s.procedureRepo.TopProcedureTypes(ctx, f, 5)
	if err != nil {
		return nil, errors.Wrap(err, "top procedure types")
	}
	return &ProcedureSummary{TotalProcedures: total, TotalValue: value, TopProcedureTypes: top}, nil
}

func applyProcedureInput(procedure *models.Procedure, in ProcedureInput) {
	procedure.Date = dateOnly(in.Date)
	procedure.ProcedureTypeID = in.ProcedureTypeID
	procedure.DoctorID = in.DoctorID
	procedure.PatientID = in.PatientID
	procedure.Value = decimal.NullDecimal{}
	if in.Value != nil {
		procedure.Value = decimal.NewNullDecimal(in.Value.Round(2))
	}
	procedure.Notes = optionalString(in.Notes)
}

// dateOnly truncates t to midnight UTC of its calendar day
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
