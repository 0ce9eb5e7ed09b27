package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/google/uuid"
)

type complianceRepository struct {
	mu        sync.RWMutex
	rules     map[string]compliance.ComplianceRule
	ruleOrder []string
	logs      []compliance.ComplianceLog
	logIndex  map[string]int
	openKeys  map[string]string // dedup key -> log ID
}

func NewComplianceRepository() compliance.ComplianceRepository {
	return &complianceRepository{
		rules:    make(map[string]compliance.ComplianceRule),
		logIndex: make(map[string]int),
		openKeys: make(map[string]string),
	}
}

// ========== RULES ==========

func (r *complianceRepository) GetActiveComplianceRules(ctx context.Context) ([]compliance.ComplianceRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []compliance.ComplianceRule
	for _, id := range r.ruleOrder {
		if rule := r.rules[id]; rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *complianceRepository) ListRules(ctx context.Context) ([]compliance.ComplianceRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]compliance.ComplianceRule, 0, len(r.ruleOrder))
	for _, id := range r.ruleOrder {
		out = append(out, r.rules[id])
	}
	return out, nil
}

func (r *complianceRepository) GetRuleByID(ctx context.Context, id string) (compliance.ComplianceRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", id, compliance.ErrComplianceRuleNotFound)
	}
	return rule, nil
}

func (r *complianceRepository) CreateRule(ctx context.Context, rule compliance.ComplianceRule) (compliance.ComplianceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	ts := now()
	rule.CreatedAt, rule.UpdatedAt = ts, ts
	if _, exists := r.rules[rule.ID]; !exists {
		r.ruleOrder = append(r.ruleOrder, rule.ID)
	}
	r.rules[rule.ID] = rule
	return rule, nil
}

func (r *complianceRepository) UpdateRule(ctx context.Context, req compliance.UpdateRuleRequest) (compliance.ComplianceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[req.ID]
	if !ok {
		return compliance.ComplianceRule{}, fmt.Errorf("rule %s: %w", req.ID, compliance.ErrComplianceRuleNotFound)
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Threshold != nil {
		rule.Threshold = *req.Threshold
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	rule.UpdatedAt = now()
	r.rules[rule.ID] = rule
	return rule, nil
}

// ========== LOGS ==========

func (r *complianceRepository) PersistComplianceLog(ctx context.Context, log compliance.ComplianceLog) (compliance.ComplianceLog, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := log.DedupKey()
	if log.Status == compliance.LogStatusOpen {
		if id, ok := r.openKeys[key]; ok {
			return r.logs[r.logIndex[id]], false, nil
		}
	}

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Status == "" {
		log.Status = compliance.LogStatusOpen
	}
	log.CreatedAt = now()

	r.logIndex[log.ID] = len(r.logs)
	r.logs = append(r.logs, log)
	if log.Status == compliance.LogStatusOpen {
		r.openKeys[key] = log.ID
	}
	return log, true, nil
}

// ListLogs returns matching logs newest first.
func (r *complianceRepository) ListLogs(ctx context.Context, filter compliance.LogFilter) ([]compliance.ComplianceLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []compliance.ComplianceLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if filter.EmployeeID != nil && l.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.RuleID != nil && l.RuleID != *filter.RuleID {
			continue
		}
		if filter.Status != nil && string(l.Status) != *filter.Status {
			continue
		}
		matched = append(matched, l)
	}

	start, end := paginate(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (r *complianceRepository) ResolveLog(ctx context.Context, id string, resolvedBy string) (compliance.ComplianceLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.logIndex[id]
	if !ok {
		return compliance.ComplianceLog{}, fmt.Errorf("log %s: %w", id, compliance.ErrComplianceLogNotFound)
	}
	log := r.logs[idx]
	if log.Status == compliance.LogStatusResolved {
		return compliance.ComplianceLog{}, fmt.Errorf("log %s: %w", id, compliance.ErrLogAlreadyResolved)
	}

	ts := now()
	log.Status = compliance.LogStatusResolved
	log.ResolvedBy = &resolvedBy
	log.ResolvedAt = &ts
	r.logs[idx] = log
	delete(r.openKeys, log.DedupKey())
	return log, nil
}
