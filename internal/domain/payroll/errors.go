package payroll

import "errors"

var (
	ErrNegativeNetSalary        = errors.New("net salary is negative")
	ErrDuplicatePayrollPeriod   = errors.New("payroll record already exists for this period")
	ErrPayrollRecordNotFound    = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyPaid = errors.New("payroll record already paid, cannot modify")
	ErrInvalidStatusTransition  = errors.New("invalid payroll status transition")
	ErrInvalidPayPeriod         = errors.New("invalid payroll period")
	ErrInvalidLineItem          = errors.New("invalid payroll line item")
	ErrCompensationNotFound     = errors.New("employee has no compensation configured")
)
