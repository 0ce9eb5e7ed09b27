package compliance

import "context"

// ComplianceRepository defines storage for rules and violation logs.
type ComplianceRepository interface {
	// Rules
	GetActiveComplianceRules(ctx context.Context) ([]ComplianceRule, error)
	ListRules(ctx context.Context) ([]ComplianceRule, error)
	GetRuleByID(ctx context.Context, id string) (ComplianceRule, error)
	CreateRule(ctx context.Context, rule ComplianceRule) (ComplianceRule, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (ComplianceRule, error)

	// Logs

	// PersistComplianceLog stores log unless an open log with the same
	// (employee, rule, violation date) exists; inserted is false in that case.
	PersistComplianceLog(ctx context.Context, log ComplianceLog) (stored ComplianceLog, inserted bool, err error)
	ListLogs(ctx context.Context, filter LogFilter) ([]ComplianceLog, int64, error)
	ResolveLog(ctx context.Context, id string, resolvedBy string) (ComplianceLog, error)
}
