package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEngineConfig_DefaultsWithoutPath(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, burnout.DefaultScoringConfig(), cfg.Burnout)
}

func TestParseEngineConfig_OverlaysDefaults(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(`
timezone: Asia/Jakarta
overtime_basis: daily
standard_hours_per_day: 7.5
burnout:
  weights:
    overtime: 60
    workload: 25
    absence: 15
tax_rules:
  - name: Income Tax
    kind: percentage
    value: 0.10
  - name: Levy
    kind: fixed
    value: "15.00"
compensations:
  - employee_id: emp-1
    base_salary: "5000.00"
    allowances:
      - name: Housing
        kind: percentage
        value: 0.10
`))
	require.NoError(t, err)

	assert.Equal(t, attendance.OvertimeBasisDaily, cfg.OvertimeBasis)
	assert.Equal(t, 7.5, cfg.StandardHoursPerDay)
	assert.Equal(t, 40.0, cfg.StandardHoursPerWeek)
	assert.Equal(t, 60.0, cfg.Burnout.Weights.Overtime)
	// Untouched nested defaults survive.
	assert.Equal(t, 80.0, cfg.Burnout.RiskLevelThresholds.Critical)

	require.Len(t, cfg.TaxRules, 2)
	assert.Equal(t, payroll.ValueKindPercentage, cfg.TaxRules[0].Kind)
	assert.Equal(t, "0.1", cfg.TaxRules[0].Value.String())
	assert.Equal(t, "15", cfg.TaxRules[1].Value.String())

	require.Len(t, cfg.Compensations, 1)
	assert.Equal(t, "5000.00", cfg.Compensations[0].BaseSalary.String())

	agg := cfg.AggregationConfig()
	assert.Equal(t, "Asia/Jakarta", agg.Location.String())
}

func TestParseEngineConfig_Invalid(t *testing.T) {
	_, err := ParseEngineConfig([]byte(`
overtime_basis: monthly
standard_hours_per_week: 0
batch_concurrency: 0
burnout:
  risk_level_thresholds:
    critical: 50
    high: 60
    medium: 35
tax_rules:
  - name: ""
    kind: tiered
    value: 1
`))
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	for _, f := range []string{"overtime_basis", "standard_hours_per_week", "batch_concurrency", "burnout.risk_level_thresholds", "tax_rules[0]"} {
		assert.Contains(t, fields, f)
	}
}

func TestLoadEngineConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_concurrency: 3\n"), 0o600))

	cfg, err := LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BatchConcurrency)

	_, err = LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseEngineConfig_ComplianceRules(t *testing.T) {
	cfg, err := ParseEngineConfig([]byte(`
compliance_rules:
  - name: Weekly hours cap
    type: max_hours_per_week
    threshold: 40
  - name: Lateness
    type: max_late_arrivals
    threshold: 2
    is_active: false
`))
	require.NoError(t, err)
	require.Len(t, cfg.ComplianceRules, 2)
	assert.Equal(t, "max_hours_per_week", cfg.ComplianceRules[0].Type)
	assert.Nil(t, cfg.ComplianceRules[0].IsActive)
	require.NotNil(t, cfg.ComplianceRules[1].IsActive)
	assert.False(t, *cfg.ComplianceRules[1].IsActive)

	_, err = ParseEngineConfig([]byte(`
compliance_rules:
  - name: Coffee
    type: max_coffee
    threshold: 1
`))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "compliance_rules[0].type")
}
