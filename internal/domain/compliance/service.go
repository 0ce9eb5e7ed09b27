package compliance

import "context"

// ComplianceService evaluates rules for a batch of employees and manages the
// reviewer workflow over the resulting logs.
type ComplianceService interface {
	// Rules
	ListRules(ctx context.Context) ([]RuleResponse, error)
	CreateRule(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	UpdateRule(ctx context.Context, req UpdateRuleRequest) (RuleResponse, error)

	// Evaluation
	EvaluateCompliance(ctx context.Context, req EvaluateRequest) (EvaluateResponse, error)

	// Logs
	ListLogs(ctx context.Context, filter LogFilter) (ListLogResponse, error)
	ResolveLog(ctx context.Context, req ResolveLogRequest) (LogResponse, error)
}
