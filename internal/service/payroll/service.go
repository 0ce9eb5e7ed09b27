package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/batch"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

type PayrollServiceImpl struct {
	payrollRepo payroll.PayrollRepository
	calculator  *Calculator
	taxRules    []payroll.TaxRule
	concurrency int
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	calculator *Calculator,
	taxRules []payroll.TaxRule,
	concurrency int,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo: payrollRepo,
		calculator:  calculator,
		taxRules:    taxRules,
		concurrency: concurrency,
	}
}

// ========== GENERATION ==========

// GeneratePayroll computes one record per employee. An employee that already
// has an active record for the period fails with ErrDuplicatePayrollPeriod
// without affecting the others.
func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		compensations, err := s.payrollRepo.ListCompensations(ctx)
		if err != nil {
			return payroll.GeneratePayrollResponse{}, fmt.Errorf("failed to list compensations: %w", err)
		}
		for _, c := range compensations {
			employeeIDs = append(employeeIDs, c.EmployeeID)
		}
	}

	results := batch.Run(ctx, employeeIDs, s.concurrency, func(ctx context.Context, employeeID string) (payroll.PayrollRecord, error) {
		return s.generateOne(ctx, employeeID, req.PayPeriod)
	})

	failed := batch.Failed(results)
	resp := payroll.GeneratePayrollResponse{
		PayPeriod: req.PayPeriod,
		Generated: len(results) - failed,
		Failed:    failed,
		Results:   make([]payroll.GenerationResult, 0, len(results)),
	}
	for _, r := range results {
		result := payroll.GenerationResult{EmployeeID: r.Key}
		// Error-status records are stored and returned next to their error.
		if r.Value.ID != "" {
			rec := payroll.NewPayrollRecordResponse(r.Value)
			result.Record = &rec
		}
		if r.Err != nil {
			slog.Warn("payroll generation failed", "employee_id", r.Key, "pay_period", req.PayPeriod, "error", r.Err)
			msg := r.Err.Error()
			result.Error = &msg
		}
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

func (s *PayrollServiceImpl) generateOne(ctx context.Context, employeeID, payPeriod string) (payroll.PayrollRecord, error) {
	// Check if record already exists
	_, err := s.payrollRepo.GetActiveRecord(ctx, employeeID, payPeriod)
	if err == nil {
		return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: %w", employeeID, payPeriod, payroll.ErrDuplicatePayrollPeriod)
	}
	if !errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to check existing payroll record: %w", err)
	}

	record, computeErr := s.compute(ctx, employeeID, payPeriod)
	if computeErr != nil && !errors.Is(computeErr, payroll.ErrNegativeNetSalary) {
		return payroll.PayrollRecord{}, computeErr
	}

	// The repository re-checks the period under its own lock or unique index.
	stored, err := s.payrollRepo.PersistPayrollRecord(ctx, record)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return stored, computeErr
}

func (s *PayrollServiceImpl) compute(ctx context.Context, employeeID, payPeriod string) (payroll.PayrollRecord, error) {
	comp, err := s.payrollRepo.GetCompensation(ctx, employeeID)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return s.calculator.Compute(payroll.NewPayrollInput(comp, payPeriod, s.taxRules))
}

// RegeneratePayroll voids the active record of the pair and stores a fresh
// computation in its place. Paid records are never voided.
func (s *PayrollServiceImpl) RegeneratePayroll(ctx context.Context, req payroll.RegeneratePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	record, computeErr := s.compute(ctx, req.EmployeeID, req.PayPeriod)
	if computeErr != nil && !errors.Is(computeErr, payroll.ErrNegativeNetSalary) {
		return payroll.PayrollRecordResponse{}, computeErr
	}

	voided, stored, err := s.payrollRepo.ReplaceActiveRecord(ctx, record)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if voided != nil {
		slog.Info("payroll record voided for regeneration",
			"record_id", voided.ID, "employee_id", voided.EmployeeID, "pay_period", voided.PayPeriod)
	}

	return payroll.NewPayrollRecordResponse(stored), computeErr
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) GetPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return payroll.NewPayrollRecordResponse(record), nil
}

func (s *PayrollServiceImpl) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	records, totalCount, err := s.payrollRepo.ListRecords(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, err
	}

	return payroll.ListPayrollRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) ProcessPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, id, payroll.PayrollStatusProcessed)
}

func (s *PayrollServiceImpl) PayPayrollRecord(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	return s.transition(ctx, id, payroll.PayrollStatusPaid)
}

func (s *PayrollServiceImpl) transition(ctx context.Context, id string, to payroll.PayrollStatus) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	if record.Status == payroll.PayrollStatusPaid {
		return payroll.PayrollRecordResponse{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordAlreadyPaid)
	}
	if !record.Status.CanTransitionTo(to) {
		return payroll.PayrollRecordResponse{}, fmt.Errorf("record %s from %s to %s: %w", id, record.Status, to, payroll.ErrInvalidStatusTransition)
	}

	updated, err := s.payrollRepo.UpdateStatus(ctx, id, record.Status, to)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	return payroll.NewPayrollRecordResponse(updated), nil
}

// ========== SUMMARY ==========

// GetPayrollSummary totals the non-void records of a pay period.
func (s *PayrollServiceImpl) GetPayrollSummary(ctx context.Context, payPeriod string) (payroll.PayrollSummaryResponse, error) {
	if !validator.IsValidPayPeriod(payPeriod) {
		return payroll.PayrollSummaryResponse{}, validator.ValidationErrors{
			{Field: "pay_period", Message: "must be in YYYY-MM format"},
		}
	}

	records, _, err := s.payrollRepo.ListRecords(ctx, payroll.PayrollFilter{PayPeriod: &payPeriod})
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	summary := payroll.PayrollSummaryResponse{PayPeriod: payPeriod}
	employees := make(map[string]struct{})
	for _, r := range records {
		switch r.Status {
		case payroll.PayrollStatusVoid:
			continue
		case payroll.PayrollStatusError:
			summary.ErrorCount++
			continue
		case payroll.PayrollStatusDraft:
			summary.DraftCount++
		case payroll.PayrollStatusProcessed:
			summary.ProcessedCount++
		case payroll.PayrollStatusPaid:
			summary.PaidCount++
		}

		employees[r.EmployeeID] = struct{}{}
		totals := []struct {
			into   *money.Money
			amount money.Money
		}{
			{&summary.TotalBaseSalary, r.BaseSalary},
			{&summary.TotalAllowances, r.AllowancesTotal()},
			{&summary.TotalBonuses, r.BonusesTotal()},
			{&summary.TotalTaxes, r.Taxes},
			{&summary.TotalDeductions, r.DeductionsTotal()},
			{&summary.TotalGrossSalary, r.GrossSalary},
			{&summary.TotalNetSalary, r.NetSalary},
		}
		for _, t := range totals {
			if *t.into, err = t.into.Add(t.amount); err != nil {
				return payroll.PayrollSummaryResponse{}, fmt.Errorf("pay period %s summary: %w", payPeriod, err)
			}
		}
	}
	summary.TotalEmployees = len(employees)

	return summary, nil
}

// ========== HELPERS ==========

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	responses := make([]payroll.PayrollRecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, payroll.NewPayrollRecordResponse(r))
	}
	return responses
}
