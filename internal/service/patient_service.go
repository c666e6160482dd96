package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

type PatientInput struct {
	Name      string
	TaxID     *string
	BirthDate *time.Time
	Phone     *string
	Email     *string
	Address   *string
	Active    *bool
}

type PatientPatch struct {
	Name      *string
	TaxID     *string
	BirthDate *time.Time
	Phone     *string
	Email     *string
	Address   *string
	Active    *bool
}

type PatientDetail struct {
	models.Patient
	Stats EntityStats `json:"stats"`
}

type PatientService struct {
	patientRepo   *repository.PatientRepository
	procedureRepo *repository.ProcedureRepository
	auditRepo     *repository.AuditRepository
}

func NewPatientService(
	patientRepo *repository.PatientRepository,
	procedureRepo *repository.ProcedureRepository,
	auditRepo *repository.AuditRepository,
) *PatientService {
	return &PatientService{
		patientRepo:   patientRepo,
		procedureRepo: procedureRepo,
		auditRepo:     auditRepo,
	}
}

func (s *PatientService) List(ctx context.Context, f repository.ListFilter) ([]models.Patient, error) {
	return s.patientRepo.ListPatients(ctx, f)
}

func (s *PatientService) Get(ctx context.Context, id uint) (*PatientDetail, error) {
	patient, err := s.patientRepo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "patient not found")
	}
	stats, err := procedureStats(ctx, s.procedureRepo, repository.OwnerPatient, id)
	if err != nil {
		return nil, err
	}
	return &PatientDetail{Patient: *patient, Stats: stats}, nil
}

func (s *PatientService) Procedures(ctx context.Context, id uint, skip, limit int) ([]models.Procedure, error) {
	if _, err := s.patientRepo.GetPatientByID(ctx, id); err != nil {
		return nil, lookup(err, "patient not found")
	}
	return s.procedureRepo.ListByOwner(ctx, repository.OwnerPatient, id, skip, limit)
}

func (s *PatientService) Create(ctx context.Context, actor *models.User, in PatientInput) (*models.Patient, error) {
	patient := &models.Patient{}
	applyPatientInput(patient, in)
	if err := s.checkTaxID(ctx, patient.TaxID, 0); err != nil {
		return nil, err
	}
	if err := s.patientRepo.CreatePatient(ctx, patient); err != nil {
		return nil, errors.Wrap(err, "create patient")
	}

	recordAudit(ctx, s.auditRepo, actor, "patient_create", fmt.Sprintf("Patient %d created", patient.ID))
	return patient, nil
}

func (s *PatientService) Replace(ctx context.Context, actor *models.User, id uint, in PatientInput) (*models.Patient, error) {
	patient, err := s.patientRepo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "patient not found")
	}
	applyPatientInput(patient, in)
	return s.save(ctx, actor, patient)
}

func (s *PatientService) Patch(ctx context.Context, actor *models.User, id uint, p PatientPatch) (*models.Patient, error) {
	patient, err := s.patientRepo.GetPatientByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "patient not found")
	}

	if p.Name != nil {
		patient.Name = strings.TrimSpace(*p.Name)
	}
	if p.TaxID != nil {
		patient.TaxID = optionalString(p.TaxID)
	}
	if p.BirthDate != nil {
		patient.BirthDate = p.BirthDate
	}
	if p.Phone != nil {
		patient.Phone = optionalString(p.Phone)
	}
	if p.Email != nil {
		patient.Email = optionalString(p.Email)
	}
	if p.Address != nil {
		patient.Address = optionalString(p.Address)
	}
	if p.Active != nil {
		patient.Active = *p.Active
	}
	return s.save(ctx, actor, patient)
}

func (s *PatientService) save(ctx context.Context, actor *models.User, patient *models.Patient) (*models.Patient, error) {
	if err := s.checkTaxID(ctx, patient.TaxID, patient.ID); err != nil {
		return nil, err
	}
	if err := s.patientRepo.UpdatePatient(ctx, patient); err != nil {
		return nil, errors.Wrap(err, "update patient")
	}

	recordAudit(ctx, s.auditRepo, actor, "patient_update", fmt.Sprintf("Patient %d updated", patient.ID))
	return patient, nil
}

func (s *PatientService) checkTaxID(ctx context.Context, taxID *string, excludeID uint) error {
	if taxID == nil {
		return nil
	}
	taken, err := s.patientRepo.TaxIDTaken(ctx, *taxID, excludeID)
	if err != nil {
		return errors.Wrap(err, "check tax id")
	}
	if taken {
		return conflictf("tax id already registered")
	}
	return nil
}

// Delete deactivates a patient, or removes it when force is set and no
// procedure references it.
func (s *PatientService) Delete(ctx context.Context, actor *models.User, id uint, force bool) error {
	if _, err := s.patientRepo.GetPatientByID(ctx, id); err != nil {
		return lookup(err, "patient not found")
	}

	if !force {
		if err := s.patientRepo.SoftDeletePatient(ctx, id); err != nil {
			return errors.Wrap(err, "deactivate patient")
		}
		recordAudit(ctx, s.auditRepo, actor, "patient_deactivate", fmt.Sprintf("Patient %d deactivated", id))
		return nil
	}

	count, err := s.procedureRepo.CountByOwner(ctx, repository.OwnerPatient, id)
	if err != nil {
		return errors.Wrap(err, "count procedures")
	}
	if count > 0 {
		return conflictf("cannot delete: patient has %d procedure(s) linked", count)
	}
	if err := s.patientRepo.DeletePatient(ctx, id); err != nil {
		return errors.Wrap(err, "delete patient")
	}
	recordAudit(ctx, s.auditRepo, actor, "patient_delete", fmt.Sprintf("Patient %d deleted", id))
	return nil
}

func applyPatientInput(patient *models.Patient, in PatientInput) {
	patient.Name = strings.TrimSpace(in.Name)
	patient.TaxID = optionalString(in.TaxID)
	patient.BirthDate = in.BirthDate
	patient.Phone = optionalString(in.Phone)
	patient.Email = optionalString(in.Email)
	patient.Address = optionalString(in.Address)
	patient.Active = boolOr(in.Active, true)
}
