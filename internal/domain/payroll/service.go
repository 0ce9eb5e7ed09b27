package payroll

import "context"

type PayrollService interface {
	// Generation
	GeneratePayroll(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	RegeneratePayroll(ctx context.Context, req RegeneratePayrollRequest) (PayrollRecordResponse, error)

	// Records
	GetPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) (ListPayrollRecordResponse, error)
	ProcessPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	PayPayrollRecord(ctx context.Context, id string) (PayrollRecordResponse, error)
	GetPayrollSummary(ctx context.Context, payPeriod string) (PayrollSummaryResponse, error)
}
