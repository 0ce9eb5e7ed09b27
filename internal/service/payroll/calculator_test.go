package payroll

import (
	"math"
	"testing"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(name, value string) payroll.LineItem {
	return payroll.LineItem{Name: name, Kind: payroll.ValueKindPercentage, Value: decimal.RequireFromString(value)}
}

func fixed(name, value string) payroll.LineItem {
	return payroll.LineItem{Name: name, Kind: payroll.ValueKindFixed, Value: decimal.RequireFromString(value)}
}

func TestCompute_HousingAndIncomeTax(t *testing.T) {
	calc := NewCalculator()

	record, err := calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("5000.00"),
		Allowances: []payroll.LineItem{pct("Housing", "0.10")},
		TaxRules:   []payroll.TaxRule{pct("Income Tax", "0.10")},
	})
	require.NoError(t, err)

	assert.Equal(t, "5500.00", record.GrossSalary.String())
	assert.Equal(t, "550.00", record.Taxes.String())
	assert.Equal(t, "4950.00", record.NetSalary.String())
	assert.Equal(t, payroll.PayrollStatusDraft, record.Status)
	require.Len(t, record.AllowancesBreakdown, 1)
	assert.Equal(t, "500.00", record.AllowancesBreakdown[0].Amount.String())
	require.NotNil(t, record.AllowancesBreakdown[0].Rate)
	assert.True(t, record.Reconciles())
}

func TestCompute_FixedOrderAndBases(t *testing.T) {
	calc := NewCalculator()

	record, err := calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("4000.00"),
		Allowances: []payroll.LineItem{fixed("Transport", "250.00"), pct("Meal", "0.05")},
		Bonuses:    []payroll.LineItem{fixed("Performance", "500.00")},
		TaxRules:   []payroll.TaxRule{pct("Income Tax", "0.10"), fixed("Levy", "15.00")},
		Deductions: []payroll.LineItem{pct("Pension", "0.02"), fixed("Union", "20.00")},
	})
	require.NoError(t, err)

	// gross = 4000 + 250 + 200 + 500
	assert.Equal(t, "4950.00", record.GrossSalary.String())
	// taxes = 495 + 15
	assert.Equal(t, "510.00", record.Taxes.String())
	// deductions = 99 + 20
	assert.Equal(t, "119.00", record.DeductionsTotal().String())
	assert.Equal(t, "4321.00", record.NetSalary.String())

	names := []string{}
	for _, b := range record.AllowancesBreakdown {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Transport", "Meal"}, names)
	assert.True(t, record.Reconciles())
}

func TestCompute_RoundsHalfAwayFromZero(t *testing.T) {
	calc := NewCalculator()

	record, err := calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("0.25"),
		Allowances: []payroll.LineItem{pct("Half", "0.5")},
	})
	require.NoError(t, err)
	assert.Equal(t, money.FromCents(13), record.AllowancesBreakdown[0].Amount)
}

func TestCompute_NetAlwaysMatchesSumRule(t *testing.T) {
	calc := NewCalculator()
	rates := []string{"0", "0.01", "0.075", "0.125", "0.333"}

	for _, base := range []string{"1234.56", "999.99", "5000.00", "0.01"} {
		for _, r := range rates {
			in := payroll.PayrollInput{
				EmployeeID: "emp-1",
				PayPeriod:  "2024-11",
				BaseSalary: money.MustParse(base),
				Allowances: []payroll.LineItem{pct("A", r), fixed("B", "10.10")},
				Bonuses:    []payroll.LineItem{pct("C", r)},
				TaxRules:   []payroll.TaxRule{pct("T", r)},
				Deductions: []payroll.LineItem{pct("D", r)},
			}
			record, err := calc.Compute(in)
			require.NoError(t, err)

			want := in.BaseSalary + record.AllowancesTotal() + record.BonusesTotal() - record.Taxes - record.DeductionsTotal()
			assert.Equal(t, want, record.NetSalary, "base %s rate %s", base, r)
			assert.True(t, record.Reconciles())
		}
	}
}

func TestCompute_NegativeNetYieldsErrorRecord(t *testing.T) {
	calc := NewCalculator()

	record, err := calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("1000.00"),
		Deductions: []payroll.LineItem{fixed("Loan", "1200.00")},
	})
	require.ErrorIs(t, err, payroll.ErrNegativeNetSalary)
	assert.Contains(t, err.Error(), "emp-1")
	assert.Contains(t, err.Error(), "2024-11")

	assert.Equal(t, payroll.PayrollStatusError, record.Status)
	assert.True(t, record.NetSalary.IsZero())
	require.NotNil(t, record.Notes)
	assert.Contains(t, *record.Notes, "-200.00")
	assert.True(t, record.Reconciles())
}

func TestCompute_RejectsBadInput(t *testing.T) {
	calc := NewCalculator()

	_, err := calc.Compute(payroll.PayrollInput{EmployeeID: "emp-1", PayPeriod: "2024-13"})
	assert.ErrorIs(t, err, payroll.ErrInvalidPayPeriod)

	_, err = calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("100.00"),
		Bonuses:    []payroll.LineItem{{Name: "Odd", Kind: "tiered", Value: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidLineItem)

	_, err = calc.Compute(payroll.PayrollInput{
		EmployeeID: "emp-1",
		PayPeriod:  "2024-11",
		BaseSalary: money.MustParse("100.00"),
		Allowances: []payroll.LineItem{fixed("Negative", "-5")},
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidLineItem)
}

func TestPayrollStatus_Transitions(t *testing.T) {
	assert.True(t, payroll.PayrollStatusDraft.CanTransitionTo(payroll.PayrollStatusProcessed))
	assert.True(t, payroll.PayrollStatusProcessed.CanTransitionTo(payroll.PayrollStatusPaid))
	assert.False(t, payroll.PayrollStatusDraft.CanTransitionTo(payroll.PayrollStatusPaid))
	assert.False(t, payroll.PayrollStatusPaid.CanTransitionTo(payroll.PayrollStatusVoid))
	assert.False(t, payroll.PayrollStatusError.Active())
	assert.False(t, payroll.PayrollStatusVoid.Active())
}

func TestCompute_RejectsAmountsOutsideCentsRange(t *testing.T) {
	calc := NewCalculator()
	huge := money.FromCents(math.MaxInt64 - 100)

	tests := []struct {
		name string
		in   payroll.PayrollInput
	}{
		{"fixed item too large", payroll.PayrollInput{
			BaseSalary: money.MustParse("1000.00"),
			Allowances: []payroll.LineItem{fixed("Housing", "100000000000000000000")},
		}},
		{"percentage overflows", payroll.PayrollInput{
			BaseSalary: huge,
			Bonuses:    []payroll.LineItem{pct("Double", "2")},
		}},
		{"gross overflows", payroll.PayrollInput{
			BaseSalary: huge,
			Allowances: []payroll.LineItem{fixed("Transport", "250.00")},
		}},
		{"allowances total overflows", payroll.PayrollInput{
			BaseSalary: money.MustParse("1.00"),
			Allowances: []payroll.LineItem{fixed("A", "90000000000000000"), fixed("B", "90000000000000000")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.EmployeeID = "emp-1"
			tt.in.PayPeriod = "2024-11"

			record, err := calc.Compute(tt.in)
			require.ErrorIs(t, err, payroll.ErrInvalidLineItem)
			assert.ErrorIs(t, err, money.ErrOutOfRange)
			assert.NotErrorIs(t, err, payroll.ErrNegativeNetSalary)
			assert.Contains(t, err.Error(), "emp-1")
			assert.Empty(t, record.EmployeeID)
		})
	}
}
