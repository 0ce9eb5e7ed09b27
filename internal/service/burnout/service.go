package burnout

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/batch"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
)

type BurnoutServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	aggregator     *attendanceService.Aggregator
	scorer         *Scorer
	concurrency    int
}

func NewBurnoutService(
	attendanceRepo attendance.AttendanceRepository,
	aggregator *attendanceService.Aggregator,
	scorer *Scorer,
	concurrency int,
) burnout.BurnoutService {
	return &BurnoutServiceImpl{
		attendanceRepo: attendanceRepo,
		aggregator:     aggregator,
		scorer:         scorer,
		concurrency:    concurrency,
	}
}

func (s *BurnoutServiceImpl) AnalyzeBurnout(ctx context.Context, req burnout.AnalyzeRequest) (burnout.AnalyzeResponse, error) {
	start, end, err := validator.ParseWindow(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return burnout.AnalyzeResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		employeeIDs, err = s.attendanceRepo.ListEmployeeIDs(ctx)
		if err != nil {
			return burnout.AnalyzeResponse{}, fmt.Errorf("failed to list employees: %w", err)
		}
	}

	results := batch.Run(ctx, employeeIDs, s.concurrency, func(ctx context.Context, employeeID string) (burnout.BurnoutEmployee, error) {
		entries, err := s.attendanceRepo.GetRawAttendance(ctx, employeeID, start, end)
		if err != nil {
			return burnout.BurnoutEmployee{}, fmt.Errorf("failed to get attendance for employee %s: %w", employeeID, err)
		}
		metrics, warnings, err := s.aggregator.Aggregate(employeeID, start, end, entries)
		if err != nil {
			return burnout.BurnoutEmployee{}, err
		}
		for _, w := range warnings {
			slog.Warn("attendance entry skipped", "employee_id", employeeID, "entry_id", w.EntryID, "code", w.Code, "message", w.Message)
		}
		emp := s.scorer.Score(metrics)
		emp.Warnings = warnings
		return emp, nil
	})

	resp := burnout.AnalyzeResponse{
		PeriodStart: start.Format(time.RFC3339),
		PeriodEnd:   end.Format(time.RFC3339),
		Employees:   []burnout.BurnoutEmployee{},
	}

	var total float64
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("burnout analysis failed", "employee_id", r.Key, "error", r.Err)
			resp.Failures = append(resp.Failures, burnout.AnalysisFailure{EmployeeID: r.Key, Error: r.Err.Error()})
			continue
		}
		resp.Employees = append(resp.Employees, r.Value)
		resp.LevelCounts.Add(r.Value.RiskLevel)
		total += r.Value.RiskScore
	}

	sort.SliceStable(resp.Employees, func(i, j int) bool {
		if resp.Employees[i].RiskScore != resp.Employees[j].RiskScore {
			return resp.Employees[i].RiskScore > resp.Employees[j].RiskScore
		}
		return resp.Employees[i].EmployeeID < resp.Employees[j].EmployeeID
	})
	if n := len(resp.Employees); n > 0 {
		resp.AverageScore = round2(total / float64(n))
	}

	return resp, nil
}
