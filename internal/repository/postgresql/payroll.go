package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const activeRecordConstraint = "uk_payroll_employee_period_active"

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== COMPENSATION ==========

const compensationColumns = `employee_id, base_salary_cents, allowances, deductions, bonuses`

func scanCompensation(row pgx.Row) (payroll.Compensation, error) {
	var c payroll.Compensation
	var baseCents int64
	var allowancesBytes, deductionsBytes, bonusesBytes []byte

	if err := row.Scan(&c.EmployeeID, &baseCents, &allowancesBytes, &deductionsBytes, &bonusesBytes); err != nil {
		return payroll.Compensation{}, err
	}
	c.BaseSalary = money.FromCents(baseCents)

	if err := json.Unmarshal(allowancesBytes, &c.Allowances); err != nil {
		return payroll.Compensation{}, fmt.Errorf("decode allowances of %s: %w", c.EmployeeID, err)
	}
	if err := json.Unmarshal(deductionsBytes, &c.Deductions); err != nil {
		return payroll.Compensation{}, fmt.Errorf("decode deductions of %s: %w", c.EmployeeID, err)
	}
	if err := json.Unmarshal(bonusesBytes, &c.Bonuses); err != nil {
		return payroll.Compensation{}, fmt.Errorf("decode bonuses of %s: %w", c.EmployeeID, err)
	}
	return c, nil
}

func (r *payrollRepository) ListCompensations(ctx context.Context) ([]payroll.Compensation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+compensationColumns+` FROM employee_compensations ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	defer rows.Close()

	var out []payroll.Compensation
	for rows.Next() {
		c, err := scanCompensation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compensation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *payrollRepository) GetCompensation(ctx context.Context, employeeID string) (payroll.Compensation, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompensation(q.QueryRow(ctx,
		`SELECT `+compensationColumns+` FROM employee_compensations WHERE employee_id = $1`, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Compensation{}, fmt.Errorf("employee %s: %w", employeeID, payroll.ErrCompensationNotFound)
		}
		return payroll.Compensation{}, fmt.Errorf("failed to get compensation: %w", err)
	}
	return c, nil
}

// UpsertCompensation stores pay terms. Used by seeding and the CLI import.
func UpsertCompensation(ctx context.Context, db *database.DB, c payroll.Compensation) error {
	q := GetQuerier(ctx, db)

	allowancesJSON, err := json.Marshal(nonNilItems(c.Allowances))
	if err != nil {
		return err
	}
	deductionsJSON, err := json.Marshal(nonNilItems(c.Deductions))
	if err != nil {
		return err
	}
	bonusesJSON, err := json.Marshal(nonNilItems(c.Bonuses))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO employee_compensations (employee_id, base_salary_cents, allowances, deductions, bonuses)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id) DO UPDATE SET
			base_salary_cents = EXCLUDED.base_salary_cents,
			allowances = EXCLUDED.allowances,
			deductions = EXCLUDED.deductions,
			bonuses = EXCLUDED.bonuses,
			updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, c.EmployeeID, c.BaseSalary.Cents(), allowancesJSON, deductionsJSON, bonusesJSON); err != nil {
		return fmt.Errorf("failed to upsert compensation of %s: %w", c.EmployeeID, err)
	}
	return nil
}

func nonNilItems(items []payroll.LineItem) []payroll.LineItem {
	if items == nil {
		return []payroll.LineItem{}
	}
	return items
}

// ========== PAYROLL RECORDS ==========

const recordColumns = `
	id, employee_id, pay_period, base_salary_cents,
	allowances_breakdown, bonuses_breakdown, taxes_breakdown, deductions_breakdown,
	gross_salary_cents, taxes_cents, net_salary_cents, status, notes,
	processed_at, paid_at, created_at, updated_at`

func scanRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var baseCents, grossCents, taxesCents, netCents int64
	var status string
	var allowancesBytes, bonusesBytes, taxesBytes, deductionsBytes []byte

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PayPeriod, &baseCents,
		&allowancesBytes, &bonusesBytes, &taxesBytes, &deductionsBytes,
		&grossCents, &taxesCents, &netCents, &status, &rec.Notes,
		&rec.ProcessedAt, &rec.PaidAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	rec.BaseSalary = money.FromCents(baseCents)
	rec.GrossSalary = money.FromCents(grossCents)
	rec.Taxes = money.FromCents(taxesCents)
	rec.NetSalary = money.FromCents(netCents)
	rec.Status = payroll.PayrollStatus(status)

	for _, b := range []struct {
		raw  []byte
		into *[]payroll.BreakdownItem
	}{
		{allowancesBytes, &rec.AllowancesBreakdown},
		{bonusesBytes, &rec.BonusesBreakdown},
		{taxesBytes, &rec.TaxesBreakdown},
		{deductionsBytes, &rec.DeductionsBreakdown},
	} {
		if err := json.Unmarshal(b.raw, b.into); err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("decode breakdown of record %s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

func marshalBreakdown(items []payroll.BreakdownItem) ([]byte, error) {
	if items == nil {
		items = []payroll.BreakdownItem{}
	}
	return json.Marshal(items)
}

func (r *payrollRepository) PersistPayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	breakdowns := make([][]byte, 0, 4)
	for _, items := range [][]payroll.BreakdownItem{
		record.AllowancesBreakdown, record.BonusesBreakdown, record.TaxesBreakdown, record.DeductionsBreakdown,
	} {
		raw, err := marshalBreakdown(items)
		if err != nil {
			return payroll.PayrollRecord{}, fmt.Errorf("encode breakdown: %w", err)
		}
		breakdowns = append(breakdowns, raw)
	}

	query := `
		INSERT INTO payroll_records (
			employee_id, pay_period, base_salary_cents,
			allowances_breakdown, bonuses_breakdown, taxes_breakdown, deductions_breakdown,
			gross_salary_cents, taxes_cents, net_salary_cents, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + recordColumns

	stored, err := scanRecord(q.QueryRow(ctx, query,
		record.EmployeeID, record.PayPeriod, record.BaseSalary.Cents(),
		breakdowns[0], breakdowns[1], breakdowns[2], breakdowns[3],
		record.GrossSalary.Cents(), record.Taxes.Cents(), record.NetSalary.Cents(), string(record.Status), record.Notes,
	))
	if err != nil {
		if isUniqueViolation(err, activeRecordConstraint) {
			return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: %w", record.EmployeeID, record.PayPeriod, payroll.ErrDuplicatePayrollPeriod)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}
	return stored, nil
}

// ReplaceActiveRecord locks the active row of the pair so concurrent
// regenerations serialize on it.
func (r *payrollRepository) ReplaceActiveRecord(ctx context.Context, record payroll.PayrollRecord) (*payroll.PayrollRecord, payroll.PayrollRecord, error) {
	var voided *payroll.PayrollRecord
	var stored payroll.PayrollRecord

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		current, err := scanRecord(tx.QueryRow(ctx, `
			SELECT `+recordColumns+` FROM payroll_records
			WHERE employee_id = $1 AND pay_period = $2 AND status NOT IN ('error', 'void')
			FOR UPDATE`,
			record.EmployeeID, record.PayPeriod,
		))
		switch {
		case err == nil:
			v, err := r.VoidRecord(ctx, current.ID)
			if err != nil {
				return err
			}
			voided = &v
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("failed to lock active payroll record: %w", err)
		}

		stored, err = r.PersistPayrollRecord(ctx, record)
		return err
	})
	if err != nil {
		return nil, payroll.PayrollRecord{}, err
	}
	return voided, stored, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
	}
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, `SELECT `+recordColumns+` FROM payroll_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) GetActiveRecord(ctx context.Context, employeeID, payPeriod string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + ` FROM payroll_records
		WHERE employee_id = $1 AND pay_period = $2 AND status NOT IN ('error', 'void')`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, payPeriod))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: %w", employeeID, payPeriod, payroll.ErrPayrollRecordNotFound)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get active payroll record: %w", err)
	}
	return rec, nil
}

func (r *payrollRepository) ListRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.PayPeriod != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("pay_period = $%d", argIdx))
		args = append(args, *filter.PayPeriod)
		argIdx++
	}
	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	whereSQL := strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM payroll_records WHERE "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	query := "SELECT " + recordColumns + " FROM payroll_records WHERE " + whereSQL +
		" ORDER BY pay_period DESC, employee_id, created_at"
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	records := []payroll.PayrollRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, id string, from, to payroll.PayrollStatus) (payroll.PayrollRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
	}
	q := GetQuerier(ctx, r.db)

	setParts := []string{"status = $3", "updated_at = NOW()"}
	switch to {
	case payroll.PayrollStatusProcessed:
		setParts = append(setParts, "processed_at = NOW()")
	case payroll.PayrollStatusPaid:
		setParts = append(setParts, "paid_at = NOW()")
	}

	query := fmt.Sprintf(`
		UPDATE payroll_records SET %s
		WHERE id = $1 AND status = $2
		RETURNING %s`, strings.Join(setParts, ", "), recordColumns)

	rec, err := scanRecord(q.QueryRow(ctx, query, id, string(from), string(to)))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to update payroll status: %w", err)
	}

	current, err := r.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	return payroll.PayrollRecord{}, fmt.Errorf("record %s is %s, not %s: %w", id, current.Status, from, payroll.ErrInvalidStatusTransition)
}

func (r *payrollRepository) VoidRecord(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	current, err := r.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	if current.Status == payroll.PayrollStatusPaid {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordAlreadyPaid)
	}
	if !current.Status.CanTransitionTo(payroll.PayrollStatusVoid) {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s is %s: %w", id, current.Status, payroll.ErrInvalidStatusTransition)
	}
	return r.UpdateStatus(ctx, id, current.Status, payroll.PayrollStatusVoid)
}
