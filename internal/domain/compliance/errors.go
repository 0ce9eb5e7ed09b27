package compliance

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedRuleType    = errors.New("unsupported compliance rule type")
	ErrComplianceRuleNotFound = errors.New("compliance rule not found")
	ErrComplianceLogNotFound  = errors.New("compliance log not found")
	ErrLogAlreadyResolved     = errors.New("compliance log already resolved")
)

// RuleError isolates the failure of a single rule during evaluation.
type RuleError struct {
	RuleID     string
	EmployeeID string
	Err        error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s for employee %s: %v", e.RuleID, e.EmployeeID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
