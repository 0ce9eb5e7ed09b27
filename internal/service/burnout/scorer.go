package burnout

import (
	"math"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
)

// Scorer maps period metrics to a burnout risk view.
type Scorer struct {
	cfg burnout.ScoringConfig
}

func NewScorer(cfg burnout.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score is pure: identical metrics always yield an identical result.
func (s *Scorer) Score(m attendance.PeriodMetrics) burnout.BurnoutEmployee {
	weeks := m.Weeks()
	avgOT := m.TotalOvertimeHours / weeks
	weeklyHours := m.TotalWorkedHours / weeks
	events := float64(m.LateCount + m.AbsenceCount)

	score := s.ScoreSignals(avgOT, weeklyHours, events)

	return burnout.BurnoutEmployee{
		EmployeeID: m.EmployeeID,
		RiskScore:  score,
		RiskLevel:  s.cfg.RiskLevelThresholds.LevelFor(score),
		Flags:      s.flags(avgOT, weeklyHours, m.LateCount, m.AbsenceCount),
		Metrics: burnout.Metrics{
			AvgOvertimeHours: round2(avgOT),
			TotalWorkHours:   round2(m.TotalWorkedHours),
		},
	}
}

// ScoreSignals combines weekly-normalized signals into a 0-100 score.
func (s *Scorer) ScoreSignals(avgOvertimeHours, weeklyWorkHours, attendanceEvents float64) float64 {
	w := s.cfg.Weights
	score := saturate(avgOvertimeHours, s.cfg.OvertimeCapHours)*w.Overtime +
		saturate(weeklyWorkHours, s.cfg.WorkloadCapHours)*w.Workload +
		saturate(attendanceEvents, s.cfg.AttendanceEventCap)*w.Absence

	return round2(math.Max(0, math.Min(100, score)))
}

func (s *Scorer) flags(avgOT, weeklyHours float64, late, absent int) []string {
	n := s.cfg.Notable
	flags := []string{}
	if avgOT >= n.AvgOvertimeHours {
		flags = append(flags, burnout.FlagExcessiveOvertime)
	}
	if weeklyHours >= n.WeeklyWorkHours {
		flags = append(flags, burnout.FlagHeavyWorkload)
	}
	if late >= n.LateCount {
		flags = append(flags, burnout.FlagFrequentLateness)
	}
	if absent >= n.AbsenceCount {
		flags = append(flags, burnout.FlagFrequentAbsences)
	}
	return flags
}

// saturate returns v/limit in [0, 1]. A non-positive limit disables the signal.
func saturate(v, limit float64) float64 {
	if limit <= 0 || v <= 0 {
		return 0
	}
	return math.Min(v/limit, 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
