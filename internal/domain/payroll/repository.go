package payroll

import "context"

// PayrollRepository defines data access methods for payroll.
// Implementations enforce at most one active record per (employee, pay period).
type PayrollRepository interface {
	// Compensation
	ListCompensations(ctx context.Context) ([]Compensation, error)
	GetCompensation(ctx context.Context, employeeID string) (Compensation, error)

	// Payroll Records

	// PersistPayrollRecord fails with ErrDuplicatePayrollPeriod when record is
	// active and another active record holds its period.
	PersistPayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	// ReplaceActiveRecord voids the active record of the pair, if any, and
	// persists record in the same unit of work.
	ReplaceActiveRecord(ctx context.Context, record PayrollRecord) (voided *PayrollRecord, stored PayrollRecord, err error)
	GetRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	GetActiveRecord(ctx context.Context, employeeID, payPeriod string) (PayrollRecord, error)
	ListRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	// UpdateStatus moves a record from one status to another; it fails with
	// ErrInvalidStatusTransition if the record is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to PayrollStatus) (PayrollRecord, error)
	VoidRecord(ctx context.Context, id string) (PayrollRecord, error)
}
