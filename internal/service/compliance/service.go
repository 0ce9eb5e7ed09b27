package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/batch"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
)

type ComplianceServiceImpl struct {
	complianceRepo compliance.ComplianceRepository
	attendanceRepo attendance.AttendanceRepository
	aggregator     *attendanceService.Aggregator
	evaluator      *Evaluator
	concurrency    int
}

func NewComplianceService(
	complianceRepo compliance.ComplianceRepository,
	attendanceRepo attendance.AttendanceRepository,
	aggregator *attendanceService.Aggregator,
	evaluator *Evaluator,
	concurrency int,
) compliance.ComplianceService {
	return &ComplianceServiceImpl{
		complianceRepo: complianceRepo,
		attendanceRepo: attendanceRepo,
		aggregator:     aggregator,
		evaluator:      evaluator,
		concurrency:    concurrency,
	}
}

// ========== RULES ==========

func (s *ComplianceServiceImpl) ListRules(ctx context.Context) ([]compliance.RuleResponse, error) {
	rules, err := s.complianceRepo.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]compliance.RuleResponse, 0, len(rules))
	for _, r := range rules {
		responses = append(responses, mapToRuleResponse(r))
	}
	return responses, nil
}

func (s *ComplianceServiceImpl) CreateRule(ctx context.Context, req compliance.CreateRuleRequest) (compliance.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.RuleResponse{}, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := s.complianceRepo.CreateRule(ctx, compliance.ComplianceRule{
		Name:      req.Name,
		Type:      compliance.RuleType(req.Type),
		Threshold: req.Threshold,
		IsActive:  isActive,
	})
	if err != nil {
		return compliance.RuleResponse{}, fmt.Errorf("failed to create compliance rule: %w", err)
	}
	return mapToRuleResponse(created), nil
}

func (s *ComplianceServiceImpl) UpdateRule(ctx context.Context, req compliance.UpdateRuleRequest) (compliance.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.RuleResponse{}, err
	}

	updated, err := s.complianceRepo.UpdateRule(ctx, req)
	if err != nil {
		return compliance.RuleResponse{}, err
	}
	return mapToRuleResponse(updated), nil
}

// ========== EVALUATION ==========

// EvaluateCompliance aggregates and evaluates every requested employee
// independently. Per-employee failures are reported in the response; only
// failures shared by the whole run return an error.
func (s *ComplianceServiceImpl) EvaluateCompliance(ctx context.Context, req compliance.EvaluateRequest) (compliance.EvaluateResponse, error) {
	start, end, err := validator.ParseWindow(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return compliance.EvaluateResponse{}, err
	}

	rules, err := s.complianceRepo.GetActiveComplianceRules(ctx)
	if err != nil {
		return compliance.EvaluateResponse{}, fmt.Errorf("failed to get active compliance rules: %w", err)
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		employeeIDs, err = s.attendanceRepo.ListEmployeeIDs(ctx)
		if err != nil {
			return compliance.EvaluateResponse{}, fmt.Errorf("failed to list employees: %w", err)
		}
	}

	results := batch.Run(ctx, employeeIDs, s.concurrency, func(ctx context.Context, employeeID string) (compliance.EmployeeEvaluation, error) {
		return s.evaluateEmployee(ctx, employeeID, start, end, rules)
	})

	resp := compliance.EvaluateResponse{
		PeriodStart:     start.Format(time.RFC3339),
		PeriodEnd:       end.Format(time.RFC3339),
		FailedEmployees: batch.Failed(results),
		Results:         make([]compliance.EmployeeEvaluation, 0, len(results)),
	}
	for _, r := range results {
		eval := r.Value
		eval.EmployeeID = r.Key
		if eval.Violations == nil {
			eval.Violations = []compliance.LogResponse{}
		}
		if r.Err != nil {
			slog.Warn("compliance evaluation failed", "employee_id", r.Key, "error", r.Err)
			eval.Errors = append(eval.Errors, r.Err.Error())
		}
		resp.TotalViolations += len(eval.Violations)
		resp.Results = append(resp.Results, eval)
	}

	return resp, nil
}

func (s *ComplianceServiceImpl) evaluateEmployee(
	ctx context.Context,
	employeeID string,
	start, end time.Time,
	rules []compliance.ComplianceRule,
) (compliance.EmployeeEvaluation, error) {
	eval := compliance.EmployeeEvaluation{EmployeeID: employeeID}

	entries, err := s.attendanceRepo.GetRawAttendance(ctx, employeeID, start, end)
	if err != nil {
		return eval, fmt.Errorf("failed to get attendance for employee %s: %w", employeeID, err)
	}

	metrics, warnings, err := s.aggregator.Aggregate(employeeID, start, end, entries)
	if err != nil {
		return eval, err
	}
	eval.Warnings = warnings

	logs, evalErr := s.evaluator.Evaluate(metrics, rules)
	if evalErr != nil {
		// Rule errors are isolated; the remaining logs are still persisted.
		for _, e := range unjoin(evalErr) {
			slog.Warn("compliance rule skipped", "employee_id", employeeID, "error", e)
			eval.Errors = append(eval.Errors, e.Error())
		}
	}

	for _, log := range logs {
		stored, inserted, err := s.complianceRepo.PersistComplianceLog(ctx, log)
		if err != nil {
			return eval, fmt.Errorf("failed to persist compliance log for employee %s rule %s: %w", employeeID, log.RuleID, err)
		}
		if !inserted {
			eval.Suppressed++
			continue
		}
		eval.Violations = append(eval.Violations, mapToLogResponse(stored))
	}

	return eval, nil
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// ========== LOGS ==========

func (s *ComplianceServiceImpl) ListLogs(ctx context.Context, filter compliance.LogFilter) (compliance.ListLogResponse, error) {
	logs, totalCount, err := s.complianceRepo.ListLogs(ctx, filter)
	if err != nil {
		return compliance.ListLogResponse{}, err
	}

	data := make([]compliance.LogResponse, 0, len(logs))
	for _, l := range logs {
		data = append(data, mapToLogResponse(l))
	}
	return compliance.ListLogResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *ComplianceServiceImpl) ResolveLog(ctx context.Context, req compliance.ResolveLogRequest) (compliance.LogResponse, error) {
	if err := req.Validate(); err != nil {
		return compliance.LogResponse{}, err
	}

	resolved, err := s.complianceRepo.ResolveLog(ctx, req.ID, req.ResolvedBy)
	if err != nil {
		if errors.Is(err, compliance.ErrComplianceLogNotFound) || errors.Is(err, compliance.ErrLogAlreadyResolved) {
			return compliance.LogResponse{}, err
		}
		return compliance.LogResponse{}, fmt.Errorf("failed to resolve compliance log %s: %w", req.ID, err)
	}
	return mapToLogResponse(resolved), nil
}

// ========== HELPERS ==========

func mapToRuleResponse(r compliance.ComplianceRule) compliance.RuleResponse {
	return compliance.RuleResponse{
		ID:        r.ID,
		Name:      r.Name,
		Type:      string(r.Type),
		Threshold: r.Threshold,
		IsActive:  r.IsActive,
	}
}

func mapToLogResponse(l compliance.ComplianceLog) compliance.LogResponse {
	var resolvedAt *string
	if l.ResolvedAt != nil {
		str := l.ResolvedAt.Format(time.RFC3339)
		resolvedAt = &str
	}

	return compliance.LogResponse{
		ID:            l.ID,
		RuleID:        l.RuleID,
		EmployeeID:    l.EmployeeID,
		ViolationDate: l.ViolationDate.Format("2006-01-02"),
		Details:       l.Details,
		Status:        string(l.Status),
		ResolvedBy:    l.ResolvedBy,
		ResolvedAt:    resolvedAt,
	}
}
