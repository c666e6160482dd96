package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_MonthlyReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDashboardService(f.reports, f.procedures)

	consult := f.procedureType(t, "Consultation", "100")
	xray := f.procedureType(t, "X-Ray", "0")
	house := f.doctor(t, "Dr. House")
	grey := f.doctor(t, "Dr. Grey")
	ann := f.patient(t, "Ann")

	f.procedure(t, "2024-03-01", consult, house, ann)
	f.procedure(t, "2024-03-15", xray, grey, ann)
	f.procedure(t, "2024-03-31", consult, grey, ann)
	f.procedure(t, "2024-04-01", consult, house, ann)

	report, err := svc.MonthlyReport(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalProcedures)
	assert.True(t, decimal.NewFromInt(200).Equal(report.TotalValue))

	require.Len(t, report.ByProcedureType, 2)
	assert.Equal(t, "Consultation", report.ByProcedureType[0].Name)
	assert.Equal(t, 2, report.ByProcedureType[0].Quantity)
	assert.True(t, decimal.NewFromInt(200).Equal(report.ByProcedureType[0].Value))
	assert.Equal(t, "X-Ray", report.ByProcedureType[1].Name)
	assert.True(t, report.ByProcedureType[1].Value.IsZero())

	require.Len(t, report.ByDoctor, 2)
	assert.Equal(t, "Dr. House", report.ByDoctor[0].Name)
	assert.Equal(t, 1, report.ByDoctor[0].Quantity)
	assert.Equal(t, 2, report.ByDoctor[1].Quantity)
}

func TestDashboardService_MonthlyReportValidates(t *testing.T) {
	svc := NewDashboardService(nil, nil)

	_, err := svc.MonthlyReport(context.Background(), 2019, 5)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.MonthlyReport(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDashboardService(f.reports, f.procedures)
	svc.now = func() time.Time { return time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC) }

	consult := f.procedureType(t, "Consultation", "100")
	house := f.doctor(t, "Dr. House")
	ann := f.patient(t, "Ann")
	f.procedure(t, "2024-02-10", consult, house, ann)
	f.procedure(t, "2024-03-05", consult, house, ann)

	stats, err := svc.Stats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Totals.Doctors)
	assert.Equal(t, int64(2), stats.Totals.Procedures)
	assert.Equal(t, int64(1), stats.Totals.ProceduresThisMonth)
	assert.True(t, decimal.NewFromInt(200).Equal(stats.Totals.TotalValue))
	assert.Equal(t, []MonthCount{{Year: 2024, Month: 2, Total: 1}, {Year: 2024, Month: 3, Total: 1}}, stats.ProceduresByMonth)
	require.Len(t, stats.LatestProcedures, 2)
	assert.Equal(t, "2024-03-05", stats.LatestProcedures[0].Date)
	require.Len(t, stats.TopDoctors, 1)
	assert.Equal(t, int64(2), stats.TopDoctors[0].Total)

	from := mustDate(t, "2024-03-01")
	ranged, err := svc.Stats(ctx, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ranged.Totals.Procedures)
}
