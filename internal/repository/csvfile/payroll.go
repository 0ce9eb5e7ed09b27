package csvfile

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/gocarina/gocsv"
)

// RegisterRow is one line of an exported payroll register.
type RegisterRow struct {
	EmployeeID  string      `csv:"employee_id"`
	PayPeriod   string      `csv:"pay_period"`
	BaseSalary  money.Money `csv:"base_salary"`
	Allowances  money.Money `csv:"allowances"`
	Bonuses     money.Money `csv:"bonuses"`
	GrossSalary money.Money `csv:"gross_salary"`
	Taxes       money.Money `csv:"taxes"`
	Deductions  money.Money `csv:"deductions"`
	NetSalary   money.Money `csv:"net_salary"`
	Status      string      `csv:"status"`
	Notes       string      `csv:"notes"`
}

func NewRegisterRow(r payroll.PayrollRecord) RegisterRow {
	row := RegisterRow{
		EmployeeID:  r.EmployeeID,
		PayPeriod:   r.PayPeriod,
		BaseSalary:  r.BaseSalary,
		Allowances:  r.AllowancesTotal(),
		Bonuses:     r.BonusesTotal(),
		GrossSalary: r.GrossSalary,
		Taxes:       r.Taxes,
		Deductions:  r.DeductionsTotal(),
		NetSalary:   r.NetSalary,
		Status:      string(r.Status),
	}
	if r.Notes != nil {
		row.Notes = *r.Notes
	}
	return row
}

// WriteRegister writes one row per record in the given order.
func WriteRegister(out io.Writer, records []payroll.PayrollRecord) error {
	rows := make([]RegisterRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewRegisterRow(r))
	}
	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("encode payroll register: %w", err)
	}
	return nil
}

// ReadRegister decodes a register written by WriteRegister.
func ReadRegister(in io.Reader) ([]RegisterRow, error) {
	var rows []RegisterRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("decode payroll register: %w", err)
	}
	return rows, nil
}
