package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidWindow):
		ValidationError(w, map[string]string{"period_end": "must be after period_start"})

	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPayPeriod):
		ValidationError(w, map[string]string{"pay_period": "must be in YYYY-MM format"})
	case errors.Is(err, payroll.ErrInvalidLineItem):
		DomainError(w, "INVALID_LINE_ITEM", err.Error(), nil)
	case errors.Is(err, payroll.ErrNegativeNetSalary):
		DomainError(w, "NEGATIVE_NET_SALARY", err.Error(), nil)
	case errors.Is(err, money.ErrOutOfRange):
		DomainError(w, "AMOUNT_OUT_OF_RANGE", err.Error(), nil)
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrCompensationNotFound):
		NotFound(w, "Compensation not found")
	case errors.Is(err, payroll.ErrDuplicatePayrollPeriod):
		Conflict(w, "Payroll record already exists for this period")
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid):
		Conflict(w, "Payroll record already paid")
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		Conflict(w, "Invalid payroll status transition")

	// Compliance domain errors
	case errors.Is(err, compliance.ErrUnsupportedRuleType):
		ValidationError(w, map[string]string{"type": "unsupported rule type"})
	case errors.Is(err, compliance.ErrComplianceRuleNotFound):
		NotFound(w, "Compliance rule not found")
	case errors.Is(err, compliance.ErrComplianceLogNotFound):
		NotFound(w, "Compliance log not found")
	case errors.Is(err, compliance.ErrLogAlreadyResolved):
		Conflict(w, "Compliance log already resolved")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
