package service

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

// Placeholder values written on rows the resolver creates.
const (
	PlaceholderSpecialty   = "to be defined"
	PlaceholderDescription = "auto-created via import"
)

// Resolver finds doctors, patients and procedure types by name and creates
// a placeholder row when none matches. Matching is exact after trimming and
// lower-casing both sides; the first match in store order wins.
type Resolver struct {
	doctors  *repository.DoctorRepository
	patients *repository.PatientRepository
	types    *repository.ProcedureTypeRepository
}

func NewResolver(
	doctors *repository.DoctorRepository,
	patients *repository.PatientRepository,
	types *repository.ProcedureTypeRepository,
) *Resolver {
	return &Resolver{doctors: doctors, patients: patients, types: types}
}

// WithTx returns a resolver whose lookups and inserts run inside tx, so rows
// created earlier in the transaction are matched by later calls.
func (r *Resolver) WithTx(tx *gorm.DB) *Resolver {
	return &Resolver{
		doctors:  r.doctors.WithTx(tx),
		patients: r.patients.WithTx(tx),
		types:    r.types.WithTx(tx),
	}
}

// Doctor returns the doctor named name, creating it when absent.
// The boolean reports whether the row was created by this call.
func (r *Resolver) Doctor(ctx context.Context, name string) (*models.Doctor, bool, error) {
	name = strings.TrimSpace(name)
	doctor, err := r.doctors.FindDoctorByName(ctx, name)
	if err == nil {
		return doctor, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errors.Wrap(err, "find doctor")
	}

	doctor = &models.Doctor{
		Name:      name,
		Specialty: PlaceholderSpecialty,
		Active:    true,
	}
	if err := r.doctors.CreateDoctor(ctx, doctor); err != nil {
		return nil, false, errors.Wrap(err, "create doctor")
	}
	return doctor, true, nil
}

// Patient returns the patient named name, creating it when absent.
func (r *Resolver) Patient(ctx context.Context, name string) (*models.Patient, bool, error) {
	name = strings.TrimSpace(name)
	patient, err := r.patients.FindPatientByName(ctx, name)
	if err == nil {
		return patient, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errors.Wrap(err, "find patient")
	}

	patient = &models.Patient{
		Name:   name,
		Active: true,
	}
	if err := r.patients.CreatePatient(ctx, patient); err != nil {
		return nil, false, errors.Wrap(err, "create patient")
	}
	return patient, true, nil
}

// ProcedureType returns the procedure type named name, creating it when absent.
func (r *Resolver) ProcedureType(ctx context.Context, name string) (*models.ProcedureType, bool, error) {
	name = strings.TrimSpace(name)
	pt, err := r.types.FindProcedureTypeByName(ctx, name)
	if err == nil {
		return pt, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errors.Wrap(err, "find procedure type")
	}

	description := PlaceholderDescription
	pt = &models.ProcedureType{
		Name:           name,
		Description:    &description,
		ReferencePrice: decimal.Zero,
		Active:         true,
	}
	if err := r.types.CreateProcedureType(ctx, pt); err != nil {
		return nil, false, errors.Wrap(err, "create procedure type")
	}
	return pt, true, nil
}
