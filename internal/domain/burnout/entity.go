package burnout

import "github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"

// RiskLevel enum
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelMedium   RiskLevel = "Medium"
	RiskLevelHigh     RiskLevel = "High"
	RiskLevelCritical RiskLevel = "Critical"
)

// Flag reason strings, in the order they are reported.
const (
	FlagExcessiveOvertime = "Excessive overtime"
	FlagHeavyWorkload     = "Heavy workload"
	FlagFrequentLateness  = "Frequent lateness"
	FlagFrequentAbsences  = "Frequent absences"
)

// BurnoutEmployee - Read-time risk view of one employee. Never persisted.
type BurnoutEmployee struct {
	EmployeeID string    `json:"employee_id"`
	RiskScore  float64   `json:"risk_score"`
	RiskLevel  RiskLevel `json:"risk_level"`
	Flags      []string  `json:"flags"`
	Metrics    Metrics   `json:"metrics"`

	// Warnings lists the attendance entries the score ignored.
	Warnings []attendance.Warning `json:"warnings,omitempty"`
}

type Metrics struct {
	AvgOvertimeHours float64 `json:"avg_overtime_hours"`
	TotalWorkHours   float64 `json:"total_work_hours"`
}

type Weights struct {
	Overtime float64 `yaml:"overtime"`
	Workload float64 `yaml:"workload"`
	Absence  float64 `yaml:"absence"`
}

// RiskLevelThresholds are inclusive lower bounds.
type RiskLevelThresholds struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
}

// NotableThresholds decide when a signal earns a flag.
type NotableThresholds struct {
	AvgOvertimeHours float64 `yaml:"avg_overtime_hours"`
	WeeklyWorkHours  float64 `yaml:"weekly_work_hours"`
	LateCount        int     `yaml:"late_count"`
	AbsenceCount     int     `yaml:"absence_count"`
}

// ScoringConfig - Tunable weights and caps for the scorer
type ScoringConfig struct {
	Weights             Weights             `yaml:"weights"`
	RiskLevelThresholds RiskLevelThresholds `yaml:"risk_level_thresholds"`
	OvertimeCapHours    float64             `yaml:"overtime_cap_hours"`   // weekly average that saturates the overtime signal
	WorkloadCapHours    float64             `yaml:"workload_cap_hours"`   // weekly hours that saturate the workload signal
	AttendanceEventCap  float64             `yaml:"attendance_event_cap"` // late + absent events that saturate the attendance signal
	Notable             NotableThresholds   `yaml:"notable"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights:             Weights{Overtime: 50, Workload: 30, Absence: 20},
		RiskLevelThresholds: RiskLevelThresholds{Critical: 80, High: 60, Medium: 35},
		OvertimeCapHours:    20,
		WorkloadCapHours:    60,
		AttendanceEventCap:  10,
		Notable: NotableThresholds{
			AvgOvertimeHours: 10,
			WeeklyWorkHours:  50,
			LateCount:        3,
			AbsenceCount:     3,
		},
	}
}

// LevelFor maps a score onto a risk level.
func (t RiskLevelThresholds) LevelFor(score float64) RiskLevel {
	switch {
	case score >= t.Critical:
		return RiskLevelCritical
	case score >= t.High:
		return RiskLevelHigh
	case score >= t.Medium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}
