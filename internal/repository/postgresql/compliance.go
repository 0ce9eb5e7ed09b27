package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const openLogConstraint = "uk_compliance_log_open"

type complianceRepository struct {
	db *database.DB
}

func NewComplianceRepository(db *database.DB) compliance.ComplianceRepository {
	return &complianceRepository{db: db}
}

// ========== RULES ==========

const ruleColumns = `id, name, type, threshold, is_active, created_at, updated_at`

func scanRule(row pgx.Row) (compliance.ComplianceRule, error) {
	var r compliance.ComplianceRule
	var ruleType string
	err := row.Scan(&r.ID, &r.Name, &ruleType, &r.Threshold, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	r.Type = compliance.RuleType(ruleType)
	return r, err
}

func (r *complianceRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]compliance.ComplianceRule, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance rules: %w", err)
	}
	defer rows.Close()

	var rules []compliance.ComplianceRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *complianceRepository) GetActiveComplianceRules(ctx context.Context) ([]compliance.ComplianceRule, error) {
	return r.queryRules(ctx, `SELECT `+ruleColumns+` FROM compliance_rules WHERE is_active ORDER BY created_at, id`)
}

func (r *complianceRepository) ListRules(ctx context.Context) ([]compliance.ComplianceRule, error) {
	return r.queryRules(ctx, `SELECT `+ruleColumns+` FROM compliance_rules ORDER BY created_at, id`)
}

func (r *complianceRepository) GetRuleByID(ctx context.Context, id string) (compliance.ComplianceRule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", id, compliance.ErrComplianceRuleNotFound)
	}
	q := GetQuerier(ctx, r.db)

	rule, err := scanRule(q.QueryRow(ctx, `SELECT `+ruleColumns+` FROM compliance_rules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", id, compliance.ErrComplianceRuleNotFound)
		}
		return compliance.ComplianceRule{}, fmt.Errorf("failed to get compliance rule: %w", err)
	}
	return rule, nil
}

func (r *complianceRepository) CreateRule(ctx context.Context, rule compliance.ComplianceRule) (compliance.ComplianceRule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compliance_rules (name, type, threshold, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + ruleColumns

	created, err := scanRule(q.QueryRow(ctx, query, rule.Name, string(rule.Type), rule.Threshold, rule.IsActive))
	if err != nil {
		return compliance.ComplianceRule{}, fmt.Errorf("failed to create compliance rule: %w", err)
	}
	return created, nil
}

func (r *complianceRepository) UpdateRule(ctx context.Context, req compliance.UpdateRuleRequest) (compliance.ComplianceRule, error) {
	if _, err := uuid.Parse(req.ID); err != nil {
		return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", req.ID, compliance.ErrComplianceRuleNotFound)
	}
	q := GetQuerier(ctx, r.db)

	updates := []string{"updated_at = now()"}
	args := []interface{}{}
	argIdx := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Threshold != nil {
		updates = append(updates, fmt.Sprintf("threshold = $%d", argIdx))
		args = append(args, *req.Threshold)
		argIdx++
	}
	if req.IsActive != nil {
		updates = append(updates, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *req.IsActive)
		argIdx++
	}

	query := fmt.Sprintf(`UPDATE compliance_rules SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(updates, ", "), argIdx, ruleColumns)
	args = append(args, req.ID)

	updated, err := scanRule(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", req.ID, compliance.ErrComplianceRuleNotFound)
		}
		return compliance.ComplianceRule{}, fmt.Errorf("failed to update compliance rule: %w", err)
	}
	return updated, nil
}

// ========== LOGS ==========

const logColumns = `id, rule_id, employee_id, violation_date, details, status, resolved_by, resolved_at, created_at`

func scanLog(row pgx.Row) (compliance.ComplianceLog, error) {
	var l compliance.ComplianceLog
	var status string
	err := row.Scan(&l.ID, &l.RuleID, &l.EmployeeID, &l.ViolationDate, &l.Details, &status, &l.ResolvedBy, &l.ResolvedAt, &l.CreatedAt)
	l.Status = compliance.LogStatus(status)
	return l, err
}

// PersistComplianceLog relies on the partial unique index over open logs;
// a conflict returns the already-open log.
func (r *complianceRepository) PersistComplianceLog(ctx context.Context, log compliance.ComplianceLog) (compliance.ComplianceLog, bool, error) {
	q := GetQuerier(ctx, r.db)

	status := log.Status
	if status == "" {
		status = compliance.LogStatusOpen
	}

	query := `
		INSERT INTO compliance_logs (rule_id, employee_id, violation_date, details, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, rule_id, violation_date) WHERE status = 'open' DO NOTHING
		RETURNING ` + logColumns

	stored, err := scanLog(q.QueryRow(ctx, query, log.RuleID, log.EmployeeID, log.ViolationDate, log.Details, string(status)))
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) && !isUniqueViolation(err, openLogConstraint) {
		return compliance.ComplianceLog{}, false, fmt.Errorf("failed to persist compliance log: %w", err)
	}

	existing, err := scanLog(q.QueryRow(ctx, `
		SELECT `+logColumns+` FROM compliance_logs
		WHERE employee_id = $1 AND rule_id = $2 AND violation_date = $3 AND status = 'open'`,
		log.EmployeeID, log.RuleID, log.ViolationDate,
	))
	if err != nil {
		return compliance.ComplianceLog{}, false, fmt.Errorf("failed to load open compliance log: %w", err)
	}
	return existing, false, nil
}

func (r *complianceRepository) ListLogs(ctx context.Context, filter compliance.LogFilter) ([]compliance.ComplianceLog, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.RuleID != nil {
		if _, err := uuid.Parse(*filter.RuleID); err != nil {
			return []compliance.ComplianceLog{}, 0, nil
		}
		where = append(where, fmt.Sprintf("rule_id = $%d", argIdx))
		args = append(args, *filter.RuleID)
		argIdx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM compliance_logs WHERE "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count compliance logs: %w", err)
	}

	query := "SELECT " + logColumns + " FROM compliance_logs WHERE " + whereClause + " ORDER BY created_at DESC, id"
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
		return nil, 0, fmt.Errorf("failed to list compliance logs: %w", err)
	}
	defer rows.Close()

	logs := []compliance.ComplianceLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan compliance log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, totalCount, rows.Err()
}

func (r *complianceRepository) ResolveLog(ctx context.Context, id string, resolvedBy string) (compliance.ComplianceLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return compliance.ComplianceLog{}, fmt.Errorf("log %s: %w", id, compliance.ErrComplianceLogNotFound)
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compliance_logs
		SET status = 'resolved', resolved_by = $2, resolved_at = now()
		WHERE id = $1 AND status = 'open'
		RETURNING ` + logColumns

	resolved, err := scanLog(q.QueryRow(ctx, query, id, resolvedBy))
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return compliance.ComplianceLog{}, fmt.Errorf("failed to resolve compliance log: %w", err)
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM compliance_logs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return compliance.ComplianceLog{}, fmt.Errorf("failed to check compliance log: %w", err)
	}
	if exists {
		return compliance.ComplianceLog{}, fmt.Errorf("log %s: %w", id, compliance.ErrLogAlreadyResolved)
	}
	return compliance.ComplianceLog{}, fmt.Errorf("log %s: %w", id, compliance.ErrComplianceLogNotFound)
}
