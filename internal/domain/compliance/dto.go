package compliance

import (
	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// ========== RULE DTOs ==========

var supportedRuleTypes = []string{
	string(RuleTypeMaxHoursPerWeek),
	string(RuleTypeMaxOvertimeHours),
	string(RuleTypeMaxConsecutiveDays),
	string(RuleTypeMaxAbsences),
	string(RuleTypeMaxLateArrivals),
	string(RuleTypeMinRestBetweenShifts),
}

type CreateRuleRequest struct {
	Name      string  `json:"name" yaml:"name"`
	Type      string  `json:"type" yaml:"type"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	IsActive  *bool   `json:"is_active,omitempty" yaml:"is_active,omitempty"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "is required"})
	}
	if !validator.IsInSlice(r.Type, supportedRuleTypes) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "unsupported rule type"})
	}
	if r.Threshold < 0 {
		errs = append(errs, validator.ValidationError{Field: "threshold", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRuleRequest struct {
	ID        string   `json:"-"`
	Name      *string  `json:"name,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

func (r *UpdateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "must not be empty"})
	}
	if r.Threshold != nil && *r.Threshold < 0 {
		errs = append(errs, validator.ValidationError{Field: "threshold", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RuleResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Threshold float64 `json:"threshold"`
	IsActive  bool    `json:"is_active"`
}

// ========== EVALUATION DTOs ==========

type EvaluateRequest struct {
	PeriodStart string   `json:"period_start"`
	PeriodEnd   string   `json:"period_end"`
	EmployeeIDs []string `json:"employee_ids,omitempty"` // Empty = every employee with attendance
}

func (r *EvaluateRequest) Validate() error {
	_, _, err := validator.ParseWindow(r.PeriodStart, r.PeriodEnd)
	return err
}

type EmployeeEvaluation struct {
	EmployeeID string               `json:"employee_id"`
	Violations []LogResponse        `json:"violations"`
	Suppressed int                  `json:"suppressed"`
	Warnings   []attendance.Warning `json:"warnings,omitempty"`
	Errors     []string             `json:"errors,omitempty"`
}

type EvaluateResponse struct {
	PeriodStart     string               `json:"period_start"`
	PeriodEnd       string               `json:"period_end"`
	Results         []EmployeeEvaluation `json:"results"`
	TotalViolations int                  `json:"total_violations"`
	FailedEmployees int                  `json:"failed_employees"`
}

// ========== LOG DTOs ==========

type LogFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	RuleID     *string `json:"rule_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type ResolveLogRequest struct {
	ID         string `json:"-"`
	ResolvedBy string `json:"resolved_by"`
}

func (r *ResolveLogRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ResolvedBy) {
		errs = append(errs, validator.ValidationError{Field: "resolved_by", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LogResponse struct {
	ID            string  `json:"id"`
	RuleID        string  `json:"rule_id"`
	EmployeeID    string  `json:"employee_id"`
	ViolationDate string  `json:"violation_date"`
	Details       string  `json:"details"`
	Status        string  `json:"status"`
	ResolvedBy    *string `json:"resolved_by,omitempty"`
	ResolvedAt    *string `json:"resolved_at,omitempty"`
}

type ListLogResponse struct {
	Data       []LogResponse `json:"data"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}
