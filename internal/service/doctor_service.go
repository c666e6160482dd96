package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

// DoctorInput carries every writable doctor field; Active defaults to true.
type DoctorInput struct {
	Name          string
	LicenseNumber *string
	Specialty     string
	Email         *string
	Phone         *string
	Active        *bool
}

// DoctorPatch changes only the non-nil fields
type DoctorPatch struct {
	Name          *string
	LicenseNumber *string
	Specialty     *string
	Email         *string
	Phone         *string
	Active        *bool
}

type DoctorDetail struct {
	models.Doctor
	Stats EntityStats `json:"stats"`
}

type DoctorService struct {
	doctorRepo    *repository.DoctorRepository
	procedureRepo *repository.ProcedureRepository
	auditRepo     *repository.AuditRepository
}

func NewDoctorService(
	doctorRepo *repository.DoctorRepository,
	procedureRepo *repository.ProcedureRepository,
	auditRepo *repository.AuditRepository,
) *DoctorService {
	return &DoctorService{
		doctorRepo:    doctorRepo,
		procedureRepo: procedureRepo,
		auditRepo:     auditRepo,
	}
}

func (s *DoctorService) List(ctx context.Context, f repository.ListFilter) ([]models.Doctor, error) {
	return s.doctorRepo.ListDoctors(ctx, f)
}

// Get returns a doctor with procedure statistics
func (s *DoctorService) Get(ctx context.Context, id uint) (*DoctorDetail, error) {
	doctor, err := s.doctorRepo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "doctor not found")
	}
	stats, err := procedureStats(ctx, s.procedureRepo, repository.OwnerDoctor, id)
	if err != nil {
		return nil, err
	}
	return &DoctorDetail{Doctor: *doctor, Stats: stats}, nil
}

// Procedures lists a doctor's procedures, newest first
func (s *DoctorService) Procedures(ctx context.Context, id uint, skip, limit int) ([]models.Procedure, error) {
	if _, err := s.doctorRepo.GetDoctorByID(ctx, id); err != nil {
		return nil, lookup(err, "doctor not found")
	}
	return s.procedureRepo.ListByOwner(ctx, repository.OwnerDoctor, id, skip, limit)
}

func (s *DoctorService) Create(ctx context.Context, actor *models.User, in DoctorInput) (*models.Doctor, error) {
	doctor := &models.Doctor{}
	applyDoctorInput(doctor, in)
	if err := s.checkLicense(ctx, doctor.LicenseNumber, 0); err != nil {
		return nil, err
	}
	if err := s.doctorRepo.CreateDoctor(ctx, doctor); err != nil {
		return nil, errors.Wrap(err, "create doctor")
	}

	recordAudit(ctx, s.auditRepo, actor, "doctor_create", fmt.Sprintf("Doctor %d (%s) created", doctor.ID, doctor.Name))
	return doctor, nil
}

// Replace overwrites every field of an existing doctor
func (s *DoctorService) Replace(ctx context.Context, actor *models.User, id uint, in DoctorInput) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "doctor not found")
	}
	applyDoctorInput(doctor, in)
	return s.save(ctx, actor, doctor)
}

// Patch updates only the provided fields
func (s *DoctorService) Patch(ctx context.Context, actor *models.User, id uint, p DoctorPatch) (*models.Doctor, error) {
	doctor, err := s.doctorRepo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "doctor not found")
	}

	if p.Name != nil {
		doctor.Name = strings.TrimSpace(*p.Name)
	}
	if p.LicenseNumber != nil {
		doctor.LicenseNumber = optionalString(p.LicenseNumber)
	}
	if p.Specialty != nil {
		doctor.Specialty = strings.TrimSpace(*p.Specialty)
	}
	if p.Email != nil {
		doctor.Email = optionalString(p.Email)
	}
	if p.Phone != nil {
		doctor.Phone = optionalString(p.Phone)
	}
	if p.Active != nil {
		doctor.Active = *p.Active
	}
	return s.save(ctx, actor, doctor)
}

func (s *DoctorService) save(ctx context.Context, actor *models.User, doctor *models.Doctor) (*models.Doctor, error) {
	if err := s.checkLicense(ctx, doctor.LicenseNumber, doctor.ID); err != nil {
		return nil, err
	}
	if err := s.doctorRepo.UpdateDoctor(ctx, doctor); err != nil {
		return nil, errors.Wrap(err, "update doctor")
	}

	recordAudit(ctx, s.auditRepo, actor, "doctor_update", fmt.Sprintf("Doctor %d updated", doctor.ID))
	return doctor, nil
}

func (s *DoctorService) checkLicense(ctx context.Context, license *string, excludeID uint) error {
	if license == nil {
		return nil
	}
	taken, err := s.doctorRepo.LicenseTaken(ctx, *license, excludeID)
	if err != nil {
		return errors.Wrap(err, "check license number")
	}
	if taken {
		return conflictf("license number already registered")
	}
	return nil
}

// Delete deactivates a doctor, or removes it when force is set. A forced
// delete is refused while procedures still reference the doctor.
func (s *DoctorService) Delete(ctx context.Context, actor *models.User, id uint, force bool) error {
	if _, err := s.doctorRepo.GetDoctorByID(ctx, id); err != nil {
		return lookup(err, "doctor not found")
	}

	if !force {
		if err := s.doctorRepo.SoftDeleteDoctor(ctx, id); err != nil {
			return errors.Wrap(err, "deactivate doctor")
		}
		recordAudit(ctx, s.auditRepo, actor, "doctor_deactivate", fmt.Sprintf("Doctor %d deactivated", id))
		return nil
	}

	count, err := s.procedureRepo.CountByOwner(ctx, repository.OwnerDoctor, id)
	if err != nil {
		return errors.Wrap(err, "count procedures")
	}
	if count > 0 {
		return conflictf("cannot delete: doctor has %d procedure(s) linked", count)
	}
	if err := s.doctorRepo.DeleteDoctor(ctx, id); err != nil {
		return errors.Wrap(err, "delete doctor")
	}
	recordAudit(ctx, s.auditRepo, actor, "doctor_delete", fmt.Sprintf("Doctor %d deleted", id))
	return nil
}

func applyDoctorInput(doctor *models.Doctor, in DoctorInput) {
	doctor.Name = strings.TrimSpace(in.Name)
	doctor.LicenseNumber = optionalString(in.LicenseNumber)
	doctor.Specialty = strings.TrimSpace(in.Specialty)
	doctor.Email = optionalString(in.Email)
	doctor.Phone = optionalString(in.Phone)
	doctor.Active = boolOr(in.Active, true)
}
