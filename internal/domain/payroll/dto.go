package payroll

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	PayPeriod   string   `json:"pay_period"`             // YYYY-MM
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = every employee with compensation
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidPayPeriod(r.PayPeriod) {
		errs = append(errs, validator.ValidationError{Field: "pay_period", Message: "must be in YYYY-MM format"})
	}
	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "must not contain empty IDs"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegeneratePayrollRequest struct {
	EmployeeID string `json:"employee_id"`
	PayPeriod  string `json:"pay_period"`
}

func (r *RegeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPayPeriod(r.PayPeriod) {
		errs = append(errs, validator.ValidationError{Field: "pay_period", Message: "must be in YYYY-MM format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// GenerationResult - Outcome for one employee of a batch run
type GenerationResult struct {
	EmployeeID string                 `json:"employee_id"`
	Record     *PayrollRecordResponse `json:"record,omitempty"`
	Error      *string                `json:"error,omitempty"`
}

type GeneratePayrollResponse struct {
	PayPeriod string             `json:"pay_period"`
	Results   []GenerationResult `json:"results"`
	Generated int                `json:"generated"`
	Failed    int                `json:"failed"`
}

// ========== PAYROLL RECORD DTOs ==========

type PayrollRecordResponse struct {
	ID                  string          `json:"id"`
	EmployeeID          string          `json:"employee_id"`
	PayPeriod           string          `json:"pay_period"`
	BaseSalary          money.Money     `json:"base_salary"`
	AllowancesBreakdown []BreakdownItem `json:"allowances_breakdown"`
	BonusesBreakdown    []BreakdownItem `json:"bonuses_breakdown"`
	TaxesBreakdown      []BreakdownItem `json:"taxes_breakdown"`
	DeductionsBreakdown []BreakdownItem `json:"deductions_breakdown"`
	TotalAllowances     money.Money     `json:"total_allowances"`
	TotalBonuses        money.Money     `json:"total_bonuses"`
	TotalDeductions     money.Money     `json:"total_deductions"`
	GrossSalary         money.Money     `json:"gross_salary"`
	Taxes               money.Money     `json:"taxes"`
	NetSalary           money.Money     `json:"net_salary"`
	Status              string          `json:"status"`
	Notes               *string         `json:"notes,omitempty"`
	ProcessedAt         *string         `json:"processed_at,omitempty"`
	PaidAt              *string         `json:"paid_at,omitempty"`
}

func NewPayrollRecordResponse(r PayrollRecord) PayrollRecordResponse {
	resp := PayrollRecordResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		PayPeriod:           r.PayPeriod,
		BaseSalary:          r.BaseSalary,
		AllowancesBreakdown: nonNil(r.AllowancesBreakdown),
		BonusesBreakdown:    nonNil(r.BonusesBreakdown),
		TaxesBreakdown:      nonNil(r.TaxesBreakdown),
		DeductionsBreakdown: nonNil(r.DeductionsBreakdown),
		TotalAllowances:     r.AllowancesTotal(),
		TotalBonuses:        r.BonusesTotal(),
		TotalDeductions:     r.DeductionsTotal(),
		GrossSalary:         r.GrossSalary,
		Taxes:               r.Taxes,
		NetSalary:           r.NetSalary,
		Status:              string(r.Status),
		Notes:               r.Notes,
	}
	if r.ProcessedAt != nil {
		s := r.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	if r.PaidAt != nil {
		s := r.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}

func nonNil(items []BreakdownItem) []BreakdownItem {
	if items == nil {
		return []BreakdownItem{}
	}
	return items
}

type PayrollFilter struct {
	PayPeriod  *string `json:"pay_period,omitempty"`
	Status     *string `json:"status,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"` // 0 = no limit
}

type ListPayrollRecordResponse struct {
	Data       []PayrollRecordResponse `json:"data"`
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
}

type PayrollSummaryResponse struct {
	PayPeriod        string      `json:"pay_period"`
	TotalEmployees   int         `json:"total_employees"`
	TotalBaseSalary  money.Money `json:"total_base_salary"`
	TotalAllowances  money.Money `json:"total_allowances"`
	TotalBonuses     money.Money `json:"total_bonuses"`
	TotalTaxes       money.Money `json:"total_taxes"`
	TotalDeductions  money.Money `json:"total_deductions"`
	TotalGrossSalary money.Money `json:"total_gross_salary"`
	TotalNetSalary   money.Money `json:"total_net_salary"`
	DraftCount       int         `json:"draft_count"`
	ProcessedCount   int         `json:"processed_count"`
	PaidCount        int         `json:"paid_count"`
	ErrorCount       int         `json:"error_count"`
}
