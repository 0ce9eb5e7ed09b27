package compliance

import (
	"time"
)

// RuleType enum
type RuleType string

const (
	RuleTypeMaxHoursPerWeek      RuleType = "max_hours_per_week"
	RuleTypeMaxOvertimeHours     RuleType = "max_overtime_hours"
	RuleTypeMaxConsecutiveDays   RuleType = "max_consecutive_days"
	RuleTypeMaxAbsences          RuleType = "max_absences"
	RuleTypeMaxLateArrivals      RuleType = "max_late_arrivals"
	RuleTypeMinRestBetweenShifts RuleType = "min_rest_between_shifts"
)

// ComplianceRule - Administrator-managed policy. Mutable; logs keep a reference only.
type ComplianceRule struct {
	ID        string
	Name      string
	Type      RuleType
	Threshold float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogStatus enum
type LogStatus string

const (
	LogStatusOpen     LogStatus = "open"
	LogStatusResolved LogStatus = "resolved"
)

// ComplianceLog - Immutable record of one detected violation
type ComplianceLog struct {
	ID            string
	RuleID        string
	EmployeeID    string
	ViolationDate time.Time
	Details       string
	Status        LogStatus
	ResolvedBy    *string
	ResolvedAt    *time.Time
	CreatedAt     time.Time
}

// DedupKey identifies repeats of the same open violation.
func (l ComplianceLog) DedupKey() string {
	return l.EmployeeID + "|" + l.RuleID + "|" + l.ViolationDate.Format("2006-01-02")
}
