package compliance

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekStart = time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

func metrics(worked float64) attendance.PeriodMetrics {
	return attendance.PeriodMetrics{
		EmployeeID:       "emp-1",
		PeriodStart:      weekStart,
		PeriodEnd:        weekStart.AddDate(0, 0, 7),
		TotalWorkedHours: worked,
	}
}

func rule(id string, t compliance.RuleType, threshold float64) compliance.ComplianceRule {
	return compliance.ComplianceRule{ID: id, Name: string(t), Type: t, Threshold: threshold, IsActive: true}
}

func TestEvaluate_MaxHoursPerWeekViolation(t *testing.T) {
	e := NewEvaluator()

	logs, err := e.Evaluate(metrics(45), []compliance.ComplianceRule{
		rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40),
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	log := logs[0]
	assert.Equal(t, compliance.LogStatusOpen, log.Status)
	assert.Equal(t, "r1", log.RuleID)
	assert.Equal(t, "emp-1", log.EmployeeID)
	assert.Equal(t, time.Date(2024, 11, 10, 0, 0, 0, 0, time.UTC), log.ViolationDate)
	assert.Contains(t, log.Details, "45")
	assert.Contains(t, log.Details, "40")
}

func TestEvaluate_ThresholdIsStrict(t *testing.T) {
	e := NewEvaluator()

	logs, err := e.Evaluate(metrics(40), []compliance.ComplianceRule{
		rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40),
	})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestEvaluate_InactiveRulesAreSkipped(t *testing.T) {
	e := NewEvaluator()
	r := rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40)
	r.IsActive = false

	logs, err := e.Evaluate(metrics(45), []compliance.ComplianceRule{r})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestEvaluate_EachRuleTypeInCatalog(t *testing.T) {
	rest := 6.5
	m := attendance.PeriodMetrics{
		EmployeeID:         "emp-1",
		PeriodStart:        weekStart,
		PeriodEnd:          weekStart.AddDate(0, 0, 7),
		TotalWorkedHours:   50,
		TotalOvertimeHours: 10,
		AbsenceCount:       3,
		LateCount:          4,
		MaxConsecutiveDays: 7,
		MinRestHours:       &rest,
	}

	cases := []struct {
		ruleType  compliance.RuleType
		threshold float64
		fires     bool
	}{
		{compliance.RuleTypeMaxHoursPerWeek, 48, true},
		{compliance.RuleTypeMaxHoursPerWeek, 50, false},
		{compliance.RuleTypeMaxOvertimeHours, 8, true},
		{compliance.RuleTypeMaxOvertimeHours, 12, false},
		{compliance.RuleTypeMaxConsecutiveDays, 6, true},
		{compliance.RuleTypeMaxConsecutiveDays, 7, false},
		{compliance.RuleTypeMaxAbsences, 2, true},
		{compliance.RuleTypeMaxAbsences, 3, false},
		{compliance.RuleTypeMaxLateArrivals, 3, true},
		{compliance.RuleTypeMaxLateArrivals, 5, false},
		{compliance.RuleTypeMinRestBetweenShifts, 8, true},
		{compliance.RuleTypeMinRestBetweenShifts, 6.5, false},
	}

	e := NewEvaluator()
	for _, c := range cases {
		logs, err := e.Evaluate(m, []compliance.ComplianceRule{rule("r", c.ruleType, c.threshold)})
		require.NoError(t, err)
		if c.fires {
			assert.Len(t, logs, 1, "%s threshold %v", c.ruleType, c.threshold)
		} else {
			assert.Empty(t, logs, "%s threshold %v", c.ruleType, c.threshold)
		}
	}
}

func TestEvaluate_MinRestSkippedWithoutShiftPairs(t *testing.T) {
	e := NewEvaluator()

	logs, err := e.Evaluate(metrics(8), []compliance.ComplianceRule{
		rule("r1", compliance.RuleTypeMinRestBetweenShifts, 11),
	})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestEvaluate_UnsupportedTypeIsIsolated(t *testing.T) {
	e := NewEvaluator()

	logs, err := e.Evaluate(metrics(45), []compliance.ComplianceRule{
		rule("bad", compliance.RuleType("max_coffee_breaks"), 3),
		rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40),
		rule("r2", compliance.RuleTypeMaxHoursPerWeek, 42),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, compliance.ErrUnsupportedRuleType)

	var ruleErr *compliance.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "bad", ruleErr.RuleID)
	assert.Equal(t, "emp-1", ruleErr.EmployeeID)

	require.Len(t, logs, 2)
	assert.Equal(t, "r1", logs[0].RuleID)
	assert.Equal(t, "r2", logs[1].RuleID)
}

func TestEvaluate_SameMetricsSameViolations(t *testing.T) {
	e := NewEvaluator()
	rules := []compliance.ComplianceRule{
		rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40),
		rule("r2", compliance.RuleTypeMaxAbsences, 0),
	}
	m := metrics(45)
	m.AbsenceCount = 1

	first, err := e.Evaluate(m, rules)
	require.NoError(t, err)
	second, err := e.Evaluate(m, rules)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

type fixedCheck struct{}

func (fixedCheck) Measure(attendance.PeriodMetrics) (float64, bool) { return 1, true }
func (fixedCheck) Direction() Direction                             { return Max }
func (fixedCheck) Label() string                                    { return "custom" }

func TestEvaluator_Register(t *testing.T) {
	e := NewEvaluator()
	e.Register("custom_rule", fixedCheck{})

	logs, err := e.Evaluate(metrics(0), []compliance.ComplianceRule{rule("c", "custom_rule", 0)})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "custom 1")
}

func TestLastDay(t *testing.T) {
	assert.Equal(t, time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC),
		lastDay(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		lastDay(time.Date(2024, 11, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 11, 1, 17, 0, 0, 0, time.UTC)))
}

func TestEvaluate_MaxHoursPerWeekUsesWindowTotal(t *testing.T) {
	e := NewEvaluator()
	m := metrics(70)
	m.PeriodEnd = weekStart.AddDate(0, 0, 14)

	logs, err := e.Evaluate(m, []compliance.ComplianceRule{
		rule("r1", compliance.RuleTypeMaxHoursPerWeek, 40),
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "70")
}
