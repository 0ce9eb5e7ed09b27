package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
)

// Calculator turns compensation terms into an itemized PayrollRecord.
// It performs no I/O and never reads the clock.
type Calculator struct {
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute runs the fixed pipeline: allowances, bonuses, gross, taxes,
// deductions, net. Percentage allowances and bonuses apply to base salary,
// percentage taxes and deductions to gross salary.
//
// A negative net salary still yields a record, with status error and net
// clamped to zero, alongside ErrNegativeNetSalary.
func (c *Calculator) Compute(in payroll.PayrollInput) (payroll.PayrollRecord, error) {
	if !validator.IsValidPayPeriod(in.PayPeriod) {
		return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %q: %w", in.EmployeeID, in.PayPeriod, payroll.ErrInvalidPayPeriod)
	}
	if in.BaseSalary.IsNegative() {
		return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: base salary %s: %w", in.EmployeeID, in.PayPeriod, in.BaseSalary, payroll.ErrInvalidLineItem)
	}

	record := payroll.PayrollRecord{
		EmployeeID: in.EmployeeID,
		PayPeriod:  in.PayPeriod,
		BaseSalary: in.BaseSalary,
		Status:     payroll.PayrollStatusDraft,
	}

	var err error
	wrap := func(section string, err error) error {
		return fmt.Errorf("employee %s period %s %s: %w", in.EmployeeID, in.PayPeriod, section, err)
	}
	// Totals that leave the int64 cents range are bad input, not a negative net.
	overflow := func(section string, err error) error {
		return wrap(section, fmt.Errorf("%w: %w", payroll.ErrInvalidLineItem, err))
	}

	// 1. allowances
	if record.AllowancesBreakdown, err = resolve(in.Allowances, in.BaseSalary); err != nil {
		return payroll.PayrollRecord{}, wrap("allowances", err)
	}
	allowances, err := payroll.BreakdownTotal(record.AllowancesBreakdown)
	if err != nil {
		return payroll.PayrollRecord{}, overflow("allowances", err)
	}
	// 2. bonuses
	if record.BonusesBreakdown, err = resolve(in.Bonuses, in.BaseSalary); err != nil {
		return payroll.PayrollRecord{}, wrap("bonuses", err)
	}
	bonuses, err := payroll.BreakdownTotal(record.BonusesBreakdown)
	if err != nil {
		return payroll.PayrollRecord{}, overflow("bonuses", err)
	}
	// 3. gross
	if record.GrossSalary, err = money.Sum(in.BaseSalary, allowances, bonuses); err != nil {
		return payroll.PayrollRecord{}, overflow("gross", err)
	}

	// 4. taxes
	if record.TaxesBreakdown, err = resolve(in.TaxRules, record.GrossSalary); err != nil {
		return payroll.PayrollRecord{}, wrap("taxes", err)
	}
	if record.Taxes, err = payroll.BreakdownTotal(record.TaxesBreakdown); err != nil {
		return payroll.PayrollRecord{}, overflow("taxes", err)
	}

	// 5. deductions
	if record.DeductionsBreakdown, err = resolve(in.Deductions, record.GrossSalary); err != nil {
		return payroll.PayrollRecord{}, wrap("deductions", err)
	}
	deductions, err := payroll.BreakdownTotal(record.DeductionsBreakdown)
	if err != nil {
		return payroll.PayrollRecord{}, overflow("deductions", err)
	}

	// 6. net
	net, err := record.GrossSalary.Sub(record.Taxes)
	if err == nil {
		net, err = net.Sub(deductions)
	}
	if err != nil {
		return payroll.PayrollRecord{}, overflow("net", err)
	}
	if net.IsNegative() {
		notes := fmt.Sprintf("computed net salary %s clamped to 0.00", net)
		record.Status = payroll.PayrollStatusError
		record.NetSalary = money.Zero
		record.Notes = &notes
		return record, fmt.Errorf("employee %s period %s net %s: %w", in.EmployeeID, in.PayPeriod, net, payroll.ErrNegativeNetSalary)
	}
	record.NetSalary = net

	return record, nil
}

// resolve prices each item against basis, preserving input order.
func resolve(items []payroll.LineItem, basis money.Money) ([]payroll.BreakdownItem, error) {
	out := make([]payroll.BreakdownItem, 0, len(items))
	for i, item := range items {
		if item.Value.IsNegative() {
			return nil, fmt.Errorf("item %d %q has negative value %s: %w", i, item.Name, item.Value, payroll.ErrInvalidLineItem)
		}

		b := payroll.BreakdownItem{Name: item.Name, Kind: item.Kind}
		switch item.Kind {
		case payroll.ValueKindFixed:
			amount, err := money.FromDecimal(item.Value)
			if err != nil {
				return nil, fmt.Errorf("item %d %q: %w: %w", i, item.Name, payroll.ErrInvalidLineItem, err)
			}
			b.Amount = amount
		case payroll.ValueKindPercentage:
			rate := item.Value
			amount, err := basis.MulRate(rate)
			if err != nil {
				return nil, fmt.Errorf("item %d %q: %w: %w", i, item.Name, payroll.ErrInvalidLineItem, err)
			}
			b.Rate = &rate
			b.Amount = amount
		default:
			return nil, fmt.Errorf("item %d %q has unknown kind %q: %w", i, item.Name, item.Kind, payroll.ErrInvalidLineItem)
		}
		out = append(out, b)
	}
	return out, nil
}
