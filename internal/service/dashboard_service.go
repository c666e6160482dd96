package service

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

type DashboardTotals struct {
	Doctors             int64           `json:"doctors"`
	Patients            int64           `json:"patients"`
	ProcedureTypes      int64           `json:"procedureTypes"`
	Procedures          int64           `json:"procedures"`
	ProceduresThisMonth int64           `json:"proceduresThisMonth"`
	TotalValue          decimal.Decimal `json:"totalValue"`
}

type MonthCount struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Total int64 `json:"total"`
}

// RecentProcedure is a flattened procedure row for the dashboard feed
type RecentProcedure struct {
	ID            uint                `json:"id"`
	Date          string              `json:"date"`
	ProcedureType string              `json:"procedureType"`
	Doctor        string              `json:"doctor"`
	Patient       string              `json:"patient"`
	Value         decimal.NullDecimal `json:"value"`
}

type DashboardStats struct {
	Totals            DashboardTotals          `json:"totals"`
	TopDoctors        []repository.DoctorCount `json:"topDoctors"`
	TopProcedureTypes []repository.TypeCount   `json:"topProcedureTypes"`
	ProceduresByMonth []MonthCount             `json:"proceduresByMonth"`
	LatestProcedures  []RecentProcedure        `json:"latestProcedures"`
}

type ReportLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

type MonthlyReport struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalProcedures int             `json:"totalProcedures"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	ByProcedureType []ReportLine    `json:"byProcedureType"`
	ByDoctor        []ReportLine    `json:"byDoctor"`
}

type DashboardService struct {
	reportRepo    *repository.ReportRepository
	procedureRepo *repository.ProcedureRepository
	now           func() time.Time
}

func NewDashboardService(reportRepo *repository.ReportRepository, procedureRepo *repository.ProcedureRepository) *DashboardService {
	return &DashboardService{
		reportRepo:    reportRepo,
		procedureRepo: procedureRepo,
		now:           time.Now,
	}
}

// Stats builds the dashboard overview. from/to limit the procedure count and
// total value; the other figures cover all data.
func (s *DashboardService) Stats(ctx context.Context, from, to *time.Time) (*DashboardStats, error) {
	totals, err := s.reportRepo.CountTotals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count totals")
	}

	period := repository.ProcedureFilter{DateFrom: from, DateTo: to}
	procedures, err := s.procedureRepo.CountProcedures(ctx, period)
	if err != nil {
		return nil, errors.Wrap(err, "count procedures")
	}
	value, err := s.procedureRepo.SumValues(ctx, period)
	if err != nil {
		return nil, errors.Wrap(err, "sum values")
	}

	today := dateOnly(s.now())
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := s.procedureRepo.CountProcedures(ctx, repository.ProcedureFilter{DateFrom: &monthStart})
	if err != nil {
		return nil, errors.Wrap(err, "count procedures this month")
	}

	topDoctors, err := s.reportRepo.TopDoctors(ctx, 5)
	if err != nil {
		return nil, errors.Wrap(err, "top doctors")
	}
	topTypes, err := s.procedureRepo.TopProcedureTypes(ctx, repository.ProcedureFilter{}, 5)
	if err != nil {
		return nil, errors.Wrap(err, "top procedure types")
	}

	since := today.AddDate(0, 0, -180)
	dates, err := s.procedureRepo.ListProcedureDates(ctx, repository.ProcedureFilter{DateFrom: &since})
	if err != nil {
		return nil, errors.Wrap(err, "procedure dates")
	}

	latest, err := s.reportRepo.LatestProcedures(ctx, 10)
	if err != nil {
		return nil, errors.Wrap(err, "latest procedures")
	}

	return &DashboardStats{
		Totals: DashboardTotals{
			Doctors:             totals.Doctors,
			Patients:            totals.Patients,
			ProcedureTypes:      totals.ProcedureTypes,
			Procedures:          procedures,
			ProceduresThisMonth: thisMonth,
			TotalValue:          value,
		},
		TopDoctors:        nonNil(topDoctors),
		TopProcedureTypes: nonNil(topTypes),
		ProceduresByMonth: countByMonth(dates),
		LatestProcedures:  recentProcedures(latest),
	}, nil
}

// MonthlyReport totals one calendar month, broken down by procedure type and
// doctor in order of first appearance.
func (s *DashboardService) MonthlyReport(ctx context.Context, year, month int) (*MonthlyReport, error) {
	if year < 2020 || year > 2100 {
		return nil, invalidf("year must be between 2020 and 2100")
	}
	if month < 1 || month > 12 {
		return nil, invalidf("month must be between 1 and 12")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	procedures, err := s.procedureRepo.ListAllProcedures(ctx, repository.ProcedureFilter{DateFrom: &first, DateTo: &last})
	if err != nil {
		return nil, errors.Wrap(err, "list procedures")
	}

	report := &MonthlyReport{Year: year, Month: month, TotalValue: decimal.Zero}
	byType := newReportGroup()
	byDoctor := newReportGroup()
	for _, p := range procedures {
		value := decimal.Zero
		if p.Value.Valid {
			value = p.Value.Decimal
		}
		report.TotalProcedures++
		report.TotalValue = report.TotalValue.Add(value)
		byType.add(p.ProcedureType.Name, value)
		byDoctor.add(p.Doctor.Name, value)
	}
	report.ByProcedureType = byType.lines
	report.ByDoctor = byDoctor.lines
	return report, nil
}

// reportGroup accumulates report lines keyed by name, keeping first-seen order
type reportGroup struct {
	index map[string]int
	lines []ReportLine
}

func newReportGroup() *reportGroup {
	return &reportGroup{index: map[string]int{}, lines: []ReportLine{}}
}

func (g *reportGroup) add(name string, value decimal.Decimal) {
	i, ok := g.index[name]
	if !ok {
		i = len(g.lines)
		g.index[name] = i
		g.lines = append(g.lines, ReportLine{Name: name, Value: decimal.Zero})
	}
	g.lines[i].Quantity++
	g.lines[i].Value = g.lines[i].Value.Add(value)
}

// countByMonth groups ascending dates into per-month totals
func countByMonth(dates []time.Time) []MonthCount {
	out := []MonthCount{}
	for _, d := range dates {
		n := len(out)
		if n > 0 && out[n-1].Year == d.Year() && out[n-1].Month == int(d.Month()) {
			out[n-1].Total++
			continue
		}
		out = append(out, MonthCount{Year: d.Year(), Month: int(d.Month()), Total: 1})
	}
	return out
}

func recentProcedures(procedures []models.Procedure) []RecentProcedure {
	out := make([]RecentProcedure, 0, len(procedures))
	for _, p := range procedures {
		out = append(out, RecentProcedure{
			ID:            p.ID,
			Date:          p.Date.Format("2006-01-02"),
			ProcedureType: p.ProcedureType.Name,
			Doctor:        p.Doctor.Name,
			Patient:       p.Patient.Name,
			Value:         p.Value,
		})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
