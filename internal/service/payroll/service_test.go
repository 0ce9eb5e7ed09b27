package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, comps ...payroll.Compensation) (payroll.PayrollService, payroll.PayrollRepository) {
	t.Helper()
	repo := memory.NewPayrollRepository(comps...)
	svc := NewPayrollService(repo, NewCalculator(), []payroll.TaxRule{pct("Income Tax", "0.10")}, 4)
	return svc, repo
}

func housing(employeeID, base string) payroll.Compensation {
	return payroll.Compensation{
		EmployeeID: employeeID,
		BaseSalary: money.MustParse(base),
		Allowances: []payroll.LineItem{pct("Housing", "0.10")},
	}
}

func activeCount(t *testing.T, repo payroll.PayrollRepository, employeeID, period string) int {
	t.Helper()
	records, _, err := repo.ListRecords(context.Background(), payroll.PayrollFilter{EmployeeID: &employeeID, PayPeriod: &period})
	require.NoError(t, err)
	n := 0
	for _, r := range records {
		if r.Status.Active() {
			n++
		}
	}
	return n
}

func TestGeneratePayroll_Scenario(t *testing.T) {
	svc, _ := newTestService(t, housing("emp-1", "5000.00"))

	resp, err := svc.GeneratePayroll(context.Background(), payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Generated)

	rec := resp.Results[0].Record
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "5500.00", rec.GrossSalary.String())
	assert.Equal(t, "550.00", rec.Taxes.String())
	assert.Equal(t, "4950.00", rec.NetSalary.String())
	assert.Equal(t, string(payroll.PayrollStatusDraft), rec.Status)
}

func TestGeneratePayroll_SecondRunIsDuplicate(t *testing.T) {
	svc, repo := newTestService(t, housing("emp-1", "5000.00"))
	ctx := context.Background()
	req := payroll.GeneratePayrollRequest{PayPeriod: "2024-11", EmployeeIDs: []string{"emp-1"}}

	_, err := svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)

	resp, err := svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1, resp.Failed)
	require.NotNil(t, resp.Results[0].Error)
	assert.Contains(t, *resp.Results[0].Error, payroll.ErrDuplicatePayrollPeriod.Error())

	assert.Equal(t, 1, activeCount(t, repo, "emp-1", "2024-11"))
}

func TestGeneratePayroll_PartialFailure(t *testing.T) {
	broke := payroll.Compensation{
		EmployeeID: "emp-broke",
		BaseSalary: money.MustParse("100.00"),
		Deductions: []payroll.LineItem{fixed("Loan", "500.00")},
	}
	svc, repo := newTestService(t, housing("emp-1", "5000.00"), broke)

	resp, err := svc.GeneratePayroll(context.Background(), payroll.GeneratePayrollRequest{
		PayPeriod:   "2024-11",
		EmployeeIDs: []string{"emp-1", "emp-missing", "emp-broke"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 1, resp.Generated)
	assert.Equal(t, 2, resp.Failed)

	assert.Nil(t, resp.Results[0].Error)
	require.NotNil(t, resp.Results[1].Error)
	assert.Contains(t, *resp.Results[1].Error, "emp-missing")

	// Negative net still stores an error record the caller can inspect.
	require.NotNil(t, resp.Results[2].Record)
	assert.Equal(t, string(payroll.PayrollStatusError), resp.Results[2].Record.Status)
	assert.True(t, resp.Results[2].Record.NetSalary.IsZero())
	assert.Equal(t, 0, activeCount(t, repo, "emp-broke", "2024-11"))
}

func TestGeneratePayroll_ValidatesPeriod(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GeneratePayroll(context.Background(), payroll.GeneratePayrollRequest{PayPeriod: "Nov 2024"})
	assert.Error(t, err)
}

func TestRegeneratePayroll_VoidsPriorRecord(t *testing.T) {
	svc, repo := newTestService(t, housing("emp-1", "5000.00"))
	ctx := context.Background()

	first, err := svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	firstID := first.Results[0].Record.ID

	repo.(memory.PayrollStore).SetCompensation(housing("emp-1", "6000.00"))

	regenerated, err := svc.RegeneratePayroll(ctx, payroll.RegeneratePayrollRequest{EmployeeID: "emp-1", PayPeriod: "2024-11"})
	require.NoError(t, err)
	assert.NotEqual(t, firstID, regenerated.ID)
	assert.Equal(t, "6600.00", regenerated.GrossSalary.String())

	old, err := svc.GetPayrollRecord(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.PayrollStatusVoid), old.Status)
	assert.Equal(t, 1, activeCount(t, repo, "emp-1", "2024-11"))
}

func TestRegeneratePayroll_RefusesPaidRecord(t *testing.T) {
	svc, _ := newTestService(t, housing("emp-1", "5000.00"))
	ctx := context.Background()

	resp, err := svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	id := resp.Results[0].Record.ID

	_, err = svc.ProcessPayrollRecord(ctx, id)
	require.NoError(t, err)
	paid, err := svc.PayPayrollRecord(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, paid.PaidAt)

	_, err = svc.RegeneratePayroll(ctx, payroll.RegeneratePayrollRequest{EmployeeID: "emp-1", PayPeriod: "2024-11"})
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)
}

func TestStatusTransitions(t *testing.T) {
	svc, _ := newTestService(t, housing("emp-1", "5000.00"))
	ctx := context.Background()

	resp, err := svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	id := resp.Results[0].Record.ID

	_, err = svc.PayPayrollRecord(ctx, id)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)

	_, err = svc.ProcessPayrollRecord(ctx, id)
	require.NoError(t, err)
	_, err = svc.PayPayrollRecord(ctx, id)
	require.NoError(t, err)

	_, err = svc.ProcessPayrollRecord(ctx, id)
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordAlreadyPaid)

	_, err = svc.ProcessPayrollRecord(ctx, "nope")
	assert.ErrorIs(t, err, payroll.ErrPayrollRecordNotFound)
}

func TestGetPayrollSummary(t *testing.T) {
	svc, _ := newTestService(t, housing("emp-1", "5000.00"), housing("emp-2", "3000.00"))
	ctx := context.Background()

	resp, err := svc.GeneratePayroll(ctx, payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	_, err = svc.ProcessPayrollRecord(ctx, resp.Results[0].Record.ID)
	require.NoError(t, err)

	summary, err := svc.GetPayrollSummary(ctx, "2024-11")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.Equal(t, 1, summary.DraftCount)
	assert.Equal(t, 1, summary.ProcessedCount)
	assert.Equal(t, "8000.00", summary.TotalBaseSalary.String())
	assert.Equal(t, "8800.00", summary.TotalGrossSalary.String())
	assert.Equal(t, "7920.00", summary.TotalNetSalary.String())

	list, err := svc.ListPayrollRecords(ctx, payroll.PayrollFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.TotalCount)
	assert.Len(t, list.Data, 1)
}

func TestGetPayrollSummary_TotalsOutOfRange(t *testing.T) {
	svc, _ := newTestService(t,
		housing("emp-1", "50000000000000000.00"),
		housing("emp-2", "50000000000000000.00"),
	)

	resp, err := svc.GeneratePayroll(context.Background(), payroll.GeneratePayrollRequest{PayPeriod: "2024-11"})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Generated)

	_, err = svc.GetPayrollSummary(context.Background(), "2024-11")
	require.ErrorIs(t, err, money.ErrOutOfRange)
	assert.Contains(t, err.Error(), "2024-11")
}
