package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

func newDoctorService(f *fixture) *DoctorService {
	return NewDoctorService(f.doctors, f.procedures, f.audit)
}

func TestDoctorService_SoftDeleteKeepsProcedures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newDoctorService(f)
	d := f.doctor(t, "Dr. Soft")
	f.procedure(t, "2024-03-01", f.procedureType(t, "Consultation", "100"), d, f.patient(t, "Ann"))

	require.NoError(t, svc.Delete(ctx, nil, d.ID, false))

	stored, err := f.doctors.GetDoctorByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Procedure{}))

	active, err := svc.List(ctx, repository.ListFilter{ActiveOnly: true, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestDoctorService_ForceDeleteRefusedWithProcedures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newDoctorService(f)
	d := f.doctor(t, "Dr. Busy")
	pt := f.procedureType(t, "Consultation", "100")
	p := f.patient(t, "Ann")
	f.procedure(t, "2024-03-01", pt, d, p)
	f.procedure(t, "2024-03-02", pt, d, p)

	err := svc.Delete(ctx, nil, d.ID, true)
	require.ErrorIs(t, err, ErrConflict)
	msg, ok := Message(err)
	require.True(t, ok)
	assert.Equal(t, "cannot delete: doctor has 2 procedure(s) linked", msg)

	stored, err := f.doctors.GetDoctorByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestDoctorService_ForceDeleteRemovesUnusedDoctor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newDoctorService(f)
	d := f.doctor(t, "Dr. Idle")

	require.NoError(t, svc.Delete(ctx, nil, d.ID, true))
	_, err := svc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, nil, d.ID, false), ErrNotFound)
}

func TestPatientService_SoftDeleteKeepsProcedures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPatientService(f.patients, f.procedures, f.audit)
	p := f.patient(t, "Ann")
	f.procedure(t, "2024-03-01", f.procedureType(t, "Consultation", "100"), f.doctor(t, "Dr. A"), p)

	require.NoError(t, svc.Delete(ctx, nil, p.ID, false))

	stored, err := f.patients.GetPatientByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Procedure{}))

	logs, err := f.audit.ListByAction(ctx, "patient_deactivate", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestPatientService_ForceDeleteRefusedWithProcedures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPatientService(f.patients, f.procedures, f.audit)
	p := f.patient(t, "Ann")
	f.procedure(t, "2024-03-01", f.procedureType(t, "Consultation", "100"), f.doctor(t, "Dr. A"), p)

	err := svc.Delete(ctx, nil, p.ID, true)
	require.ErrorIs(t, err, ErrConflict)
	msg, ok := Message(err)
	require.True(t, ok)
	assert.Equal(t, "cannot delete: patient has 1 procedure(s) linked", msg)

	stored, err := f.patients.GetPatientByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, int64(1), countRows(t, f.db, &models.Procedure{}))

	logs, err := f.audit.ListByAction(ctx, "patient_delete", 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPatientService_ForceDeleteRemovesUnusedPatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewPatientService(f.patients, f.procedures, f.audit)
	p := f.patient(t, "Idle")

	require.NoError(t, svc.Delete(ctx, nil, p.ID, true))
	_, err := f.patients.GetPatientByID(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProcedureTypeService_ForceDeleteRefusedWithProcedures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProcedureTypeService(f.types, f.procedures, f.audit)
	pt := f.procedureType(t, "Consultation", "100")
	d, p := f.doctor(t, "Dr. A"), f.patient(t, "Ann")
	f.procedure(t, "2024-03-01", pt, d, p)
	f.procedure(t, "2024-03-02", pt, d, p)

	err := svc.Delete(ctx, nil, pt.ID, true)
	require.ErrorIs(t, err, ErrConflict)
	msg, ok := Message(err)
	require.True(t, ok)
	assert.Equal(t, "cannot delete: procedure type has 2 procedure(s) linked", msg)

	stored, err := f.types.GetProcedureTypeByID(ctx, pt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, int64(2), countRows(t, f.db, &models.Procedure{}))

	unused := f.procedureType(t, "Biopsy", "0")
	require.NoError(t, svc.Delete(ctx, nil, unused.ID, true))
	_, err = f.types.GetProcedureTypeByID(ctx, unused.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDoctorService_LicenseMustBeUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newDoctorService(f)
	license := "CRM-123"

	first, err := svc.Create(ctx, nil, DoctorInput{Name: "Dr. One", Specialty: "Cardiology", LicenseNumber: &license})
	require.NoError(t, err)
	assert.True(t, first.Active)

	_, err = svc.Create(ctx, nil, DoctorInput{Name: "Dr. Two", Specialty: "Cardiology", LicenseNumber: &license})
	assert.ErrorIs(t, err, ErrConflict)

	// Re-saving a doctor with its own license is not a conflict.
	name := "Dr. One Renamed"
	updated, err := svc.Patch(ctx, nil, first.ID, DoctorPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestDoctorService_GetIncludesStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.doctor(t, "Dr. Stats")
	pt := f.procedureType(t, "Consultation", "100")
	p := f.patient(t, "Ann")
	f.procedure(t, "2024-01-10", pt, d, p)
	f.procedure(t, "2024-02-20", pt, d, p)

	detail, err := newDoctorService(f).Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detail.Stats.TotalProcedures)
	require.NotNil(t, detail.Stats.LastActivity)
	assert.Equal(t, "2024-02-20", detail.Stats.LastActivity.Format("2006-01-02"))
}

func TestProcedureTypeService_RejectsNegativePrice(t *testing.T) {
	f := newFixture(t)
	svc := NewProcedureTypeService(f.types, f.procedures, f.audit)

	_, err := svc.Create(context.Background(), nil, ProcedureTypeInput{Name: "Bad", ReferencePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalid)

	pt, err := svc.Create(context.Background(), nil, ProcedureTypeInput{Name: "Good", ReferencePrice: decimal.RequireFromString("10.456")})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10.46").Equal(pt.ReferencePrice))

	_, err = svc.Create(context.Background(), nil, ProcedureTypeInput{Name: " good ", ReferencePrice: decimal.Zero})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProcedureService_CreateChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewProcedureService(f.procedures, f.doctors, f.patients, f.types, f.audit)
	d := f.doctor(t, "Dr. Ref")
	p := f.patient(t, "Ann")
	pt := f.procedureType(t, "Consultation", "100")

	_, err := svc.Create(ctx, nil, ProcedureInput{Date: mustDate(t, "2024-03-01"), ProcedureTypeID: pt.ID, DoctorID: 999, PatientID: p.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	value := decimal.RequireFromString("80")
	created, err := svc.Create(ctx, nil, ProcedureInput{
		Date: mustDate(t, "2024-03-01"), ProcedureTypeID: pt.ID, DoctorID: d.ID, PatientID: p.ID, Value: &value,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ref", created.Doctor.Name)
	assert.Equal(t, "Consultation", created.ProcedureType.Name)

	summary, err := svc.Summary(ctx, repository.ProcedureFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalProcedures)
	assert.True(t, value.Equal(summary.TotalValue))
	require.Len(t, summary.TopProcedureTypes, 1)
	assert.Equal(t, int64(1), summary.TopProcedureTypes[0].Total)
}
