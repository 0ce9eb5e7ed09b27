package payroll

import (
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// ValueKind enum
type ValueKind string

const (
	ValueKindFixed      ValueKind = "fixed"
	ValueKindPercentage ValueKind = "percentage"
)

func (k ValueKind) Valid() bool {
	return k == ValueKindFixed || k == ValueKindPercentage
}

// LineItem - A named allowance, bonus, deduction or tax rule.
// Fixed items carry a currency amount in Value, percentage items a fraction
// (0.10 is ten percent) of the basis the calculator applies them to.
type LineItem struct {
	Name  string          `json:"name" yaml:"name"`
	Kind  ValueKind       `json:"kind" yaml:"kind"`
	Value decimal.Decimal `json:"value" yaml:"value"`
}

// TaxRule is applied against gross salary, in order.
type TaxRule = LineItem

// BreakdownItem - One resolved line of a payroll breakdown
type BreakdownItem struct {
	Name   string           `json:"name"`
	Kind   ValueKind        `json:"kind"`
	Rate   *decimal.Decimal `json:"rate,omitempty"` // set for percentage items
	Amount money.Money      `json:"amount"`
}

// BreakdownTotal sums the item amounts, failing with money.ErrOutOfRange on
// overflow.
func BreakdownTotal(items []BreakdownItem) (money.Money, error) {
	var total money.Money
	for _, it := range items {
		var err error
		if total, err = total.Add(it.Amount); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// sumBreakdown is for computed records, whose totals the calculator has
// already checked.
func sumBreakdown(items []BreakdownItem) money.Money {
	var total money.Money
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "draft"
	PayrollStatusProcessed PayrollStatus = "processed"
	PayrollStatusPaid      PayrollStatus = "paid"
	PayrollStatusError     PayrollStatus = "error"
	PayrollStatusVoid      PayrollStatus = "void"
)

// Active reports whether a record in this status occupies its pay period.
func (s PayrollStatus) Active() bool {
	return s != PayrollStatusError && s != PayrollStatusVoid
}

var transitions = map[PayrollStatus][]PayrollStatus{
	PayrollStatusDraft:     {PayrollStatusProcessed, PayrollStatusVoid},
	PayrollStatusProcessed: {PayrollStatusPaid, PayrollStatusVoid},
	PayrollStatusError:     {PayrollStatusVoid},
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayrollRecord - Generated payroll result with its full breakdown
type PayrollRecord struct {
	ID                  string
	EmployeeID          string
	PayPeriod           string // YYYY-MM
	BaseSalary          money.Money
	AllowancesBreakdown []BreakdownItem
	BonusesBreakdown    []BreakdownItem
	TaxesBreakdown      []BreakdownItem
	DeductionsBreakdown []BreakdownItem
	GrossSalary         money.Money
	Taxes               money.Money
	NetSalary           money.Money
	Status              PayrollStatus
	Notes               *string
	ProcessedAt         *time.Time
	PaidAt              *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r PayrollRecord) AllowancesTotal() money.Money { return sumBreakdown(r.AllowancesBreakdown) }
func (r PayrollRecord) BonusesTotal() money.Money    { return sumBreakdown(r.BonusesBreakdown) }
func (r PayrollRecord) DeductionsTotal() money.Money { return sumBreakdown(r.DeductionsBreakdown) }

// Reconciles checks the stored totals against the breakdown.
// An error record reconciles when its net salary is clamped to zero.
func (r PayrollRecord) Reconciles() bool {
	gross := r.BaseSalary + r.AllowancesTotal() + r.BonusesTotal()
	if gross != r.GrossSalary || sumBreakdown(r.TaxesBreakdown) != r.Taxes {
		return false
	}
	net := gross - r.Taxes - r.DeductionsTotal()
	if r.Status == PayrollStatusError {
		return net.IsNegative() && r.NetSalary.IsZero()
	}
	return net == r.NetSalary
}

// Compensation - Standing pay terms of one employee
type Compensation struct {
	EmployeeID string      `json:"employee_id" yaml:"employee_id"`
	BaseSalary money.Money `json:"base_salary" yaml:"base_salary"`
	Allowances []LineItem  `json:"allowances,omitempty" yaml:"allowances"`
	Deductions []LineItem  `json:"deductions,omitempty" yaml:"deductions"`
	Bonuses    []LineItem  `json:"bonuses,omitempty" yaml:"bonuses"`
}

// PayrollInput - Everything the calculator needs for one employee and period
type PayrollInput struct {
	EmployeeID string
	PayPeriod  string
	BaseSalary money.Money
	Allowances []LineItem
	Deductions []LineItem
	Bonuses    []LineItem
	TaxRules   []TaxRule
}

// NewPayrollInput combines standing compensation with the period's tax rules.
func NewPayrollInput(c Compensation, payPeriod string, taxRules []TaxRule) PayrollInput {
	return PayrollInput{
		EmployeeID: c.EmployeeID,
		PayPeriod:  payPeriod,
		BaseSalary: c.BaseSalary,
		Allowances: c.Allowances,
		Deductions: c.Deductions,
		Bonuses:    c.Bonuses,
		TaxRules:   taxRules,
	}
}
