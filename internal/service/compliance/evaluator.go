package compliance

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
)

// Direction says which side of the threshold is a breach.
type Direction int

const (
	// Max rules fire when the measured value is strictly above the threshold.
	Max Direction = iota
	// Min rules fire when the measured value is strictly below the threshold.
	Min
)

// RuleCheck measures one metric for a rule type.
type RuleCheck interface {
	// Measure returns the metric value; ok is false when the metric is not
	// defined for this period and the rule cannot fire.
	Measure(m attendance.PeriodMetrics) (value float64, ok bool)
	Direction() Direction
	// Label names the measured quantity in violation details.
	Label() string
}

type metricCheck struct {
	label     string
	direction Direction
	measure   func(m attendance.PeriodMetrics) (float64, bool)
}

func (c metricCheck) Measure(m attendance.PeriodMetrics) (float64, bool) { return c.measure(m) }
func (c metricCheck) Direction() Direction                               { return c.direction }
func (c metricCheck) Label() string                                      { return c.label }

func always(f func(m attendance.PeriodMetrics) float64) func(attendance.PeriodMetrics) (float64, bool) {
	return func(m attendance.PeriodMetrics) (float64, bool) { return f(m), true }
}

// DefaultChecks is the built-in rule catalog.
func DefaultChecks() map[compliance.RuleType]RuleCheck {
	return map[compliance.RuleType]RuleCheck{
		// Compares the total for the whole evaluation window, so callers
		// pass one-week windows to get a weekly limit.
		compliance.RuleTypeMaxHoursPerWeek: metricCheck{
			label:     "worked hours",
			direction: Max,
			measure:   always(func(m attendance.PeriodMetrics) float64 { return m.TotalWorkedHours }),
		},
		compliance.RuleTypeMaxOvertimeHours: metricCheck{
			label:     "overtime hours",
			direction: Max,
			measure:   always(func(m attendance.PeriodMetrics) float64 { return m.TotalOvertimeHours }),
		},
		compliance.RuleTypeMaxConsecutiveDays: metricCheck{
			label:     "consecutive working days",
			direction: Max,
			measure:   always(func(m attendance.PeriodMetrics) float64 { return float64(m.MaxConsecutiveDays) }),
		},
		compliance.RuleTypeMaxAbsences: metricCheck{
			label:     "absences",
			direction: Max,
			measure:   always(func(m attendance.PeriodMetrics) float64 { return float64(m.AbsenceCount) }),
		},
		compliance.RuleTypeMaxLateArrivals: metricCheck{
			label:     "late arrivals",
			direction: Max,
			measure:   always(func(m attendance.PeriodMetrics) float64 { return float64(m.LateCount) }),
		},
		compliance.RuleTypeMinRestBetweenShifts: metricCheck{
			label:     "rest hours between shifts",
			direction: Min,
			measure: func(m attendance.PeriodMetrics) (float64, bool) {
				if m.MinRestHours == nil {
					return 0, false
				}
				return *m.MinRestHours, true
			},
		},
	}
}

// Evaluator checks metrics against compliance rules. It never persists and
// never resolves logs.
type Evaluator struct {
	checks map[compliance.RuleType]RuleCheck
}

func NewEvaluator() *Evaluator {
	return &Evaluator{checks: DefaultChecks()}
}

// Register adds or replaces the check for a rule type.
func (e *Evaluator) Register(t compliance.RuleType, c RuleCheck) {
	e.checks[t] = c
}

// Evaluate returns one open log per violated active rule, in rule order.
// Rules that cannot be evaluated contribute a *compliance.RuleError to the
// joined error; the remaining rules are still evaluated.
func (e *Evaluator) Evaluate(m attendance.PeriodMetrics, rules []compliance.ComplianceRule) ([]compliance.ComplianceLog, error) {
	var (
		logs []compliance.ComplianceLog
		errs []error
	)
	violationDate := lastDay(m.PeriodStart, m.PeriodEnd)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		check, ok := e.checks[rule.Type]
		if !ok {
			errs = append(errs, &compliance.RuleError{
				RuleID:     rule.ID,
				EmployeeID: m.EmployeeID,
				Err:        fmt.Errorf("type %q: %w", rule.Type, compliance.ErrUnsupportedRuleType),
			})
			continue
		}

		value, ok := check.Measure(m)
		if !ok || !breached(check.Direction(), value, rule.Threshold) {
			continue
		}

		logs = append(logs, compliance.ComplianceLog{
			RuleID:        rule.ID,
			EmployeeID:    m.EmployeeID,
			ViolationDate: violationDate,
			Details:       details(rule, check, value, m),
			Status:        compliance.LogStatusOpen,
		})
	}

	return logs, errors.Join(errs...)
}

func breached(d Direction, value, threshold float64) bool {
	if d == Min {
		return value < threshold
	}
	return value > threshold
}

func details(rule compliance.ComplianceRule, check RuleCheck, value float64, m attendance.PeriodMetrics) string {
	limit := "maximum"
	if check.Direction() == Min {
		limit = "minimum"
	}
	return fmt.Sprintf("%s: %s %s vs %s %s (period %s to %s)",
		rule.Name,
		check.Label(), formatFloat(value),
		limit, formatFloat(rule.Threshold),
		m.PeriodStart.Format("2006-01-02"), m.PeriodEnd.Format("2006-01-02"),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// lastDay is the last calendar date covered by [start, end).
func lastDay(start, end time.Time) time.Time {
	last := end.Add(-time.Nanosecond)
	if last.Before(start) {
		last = start
	}
	y, mo, d := last.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
