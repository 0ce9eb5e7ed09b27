package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/google/uuid"
)

type payrollRepository struct {
	mu            sync.RWMutex
	compensations map[string]payroll.Compensation
	records       map[string]payroll.PayrollRecord
	order         []string
	active        map[string]string // employee|period -> record ID
}

// PayrollStore is the in-memory payroll repository. SetCompensation seeds
// pay terms from config files and tests.
type PayrollStore interface {
	payroll.PayrollRepository
	SetCompensation(c payroll.Compensation)
}

func NewPayrollRepository(compensations ...payroll.Compensation) PayrollStore {
	r := &payrollRepository{
		compensations: make(map[string]payroll.Compensation),
		records:       make(map[string]payroll.PayrollRecord),
		active:        make(map[string]string),
	}
	for _, c := range compensations {
		r.SetCompensation(c)
	}
	return r
}

func activeKey(employeeID, payPeriod string) string {
	return employeeID + "|" + payPeriod
}

// ========== COMPENSATION ==========

func (r *payrollRepository) SetCompensation(c payroll.Compensation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compensations[c.EmployeeID] = c
}

func (r *payrollRepository) ListCompensations(ctx context.Context) ([]payroll.Compensation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]payroll.Compensation, 0, len(r.compensations))
	for _, c := range r.compensations {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *payrollRepository) GetCompensation(ctx context.Context, employeeID string) (payroll.Compensation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.compensations[employeeID]
	if !ok {
		return payroll.Compensation{}, fmt.Errorf("employee %s: %w", employeeID, payroll.ErrCompensationNotFound)
	}
	return c, nil
}

// ========== PAYROLL RECORDS ==========

func (r *payrollRepository) PersistPayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(record)
}

func (r *payrollRepository) insertLocked(record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	key := activeKey(record.EmployeeID, record.PayPeriod)
	if record.Status.Active() {
		if _, taken := r.active[key]; taken {
			return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: %w", record.EmployeeID, record.PayPeriod, payroll.ErrDuplicatePayrollPeriod)
		}
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	ts := now()
	record.CreatedAt, record.UpdatedAt = ts, ts

	r.records[record.ID] = record
	r.order = append(r.order, record.ID)
	if record.Status.Active() {
		r.active[key] = record.ID
	}
	return record, nil
}

func (r *payrollRepository) ReplaceActiveRecord(ctx context.Context, record payroll.PayrollRecord) (*payroll.PayrollRecord, payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var voided *payroll.PayrollRecord
	if id, ok := r.active[activeKey(record.EmployeeID, record.PayPeriod)]; ok {
		v, err := r.voidLocked(id)
		if err != nil {
			return nil, payroll.PayrollRecord{}, err
		}
		voided = &v
	}

	stored, err := r.insertLocked(record)
	if err != nil {
		return nil, payroll.PayrollRecord{}, err
	}
	return voided, stored, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
	}
	return record, nil
}

func (r *payrollRepository) GetActiveRecord(ctx context.Context, employeeID, payPeriod string) (payroll.PayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.active[activeKey(employeeID, payPeriod)]
	if !ok {
		return payroll.PayrollRecord{}, fmt.Errorf("employee %s period %s: %w", employeeID, payPeriod, payroll.ErrPayrollRecordNotFound)
	}
	return r.records[id], nil
}

// ListRecords returns matching records ordered by pay period, then employee.
func (r *payrollRepository) ListRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []payroll.PayrollRecord
	for _, id := range r.order {
		rec := r.records[id]
		if filter.PayPeriod != nil && rec.PayPeriod != *filter.PayPeriod {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		matched = append(matched, rec)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].PayPeriod != matched[j].PayPeriod {
			return matched[i].PayPeriod > matched[j].PayPeriod
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})

	start, end := paginate(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, id string, from, to payroll.PayrollStatus) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
	}
	if record.Status != from {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s is %s, not %s: %w", id, record.Status, from, payroll.ErrInvalidStatusTransition)
	}

	ts := now()
	record.Status = to
	record.UpdatedAt = ts
	switch to {
	case payroll.PayrollStatusProcessed:
		record.ProcessedAt = &ts
	case payroll.PayrollStatusPaid:
		record.PaidAt = &ts
	}
	r.records[id] = record
	if !to.Active() {
		delete(r.active, activeKey(record.EmployeeID, record.PayPeriod))
	}
	return record, nil
}

func (r *payrollRepository) VoidRecord(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.voidLocked(id)
}

func (r *payrollRepository) voidLocked(id string) (payroll.PayrollRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordNotFound)
	}
	if record.Status == payroll.PayrollStatusPaid {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s: %w", id, payroll.ErrPayrollRecordAlreadyPaid)
	}
	if !record.Status.CanTransitionTo(payroll.PayrollStatusVoid) {
		return payroll.PayrollRecord{}, fmt.Errorf("record %s is %s: %w", id, record.Status, payroll.ErrInvalidStatusTransition)
	}

	record.Status = payroll.PayrollStatusVoid
	record.UpdatedAt = now()
	r.records[id] = record
	delete(r.active, activeKey(record.EmployeeID, record.PayPeriod))
	return record, nil
}
