package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

// EngineConfig carries every numeric knob of the computation engine. It is
// passed explicitly to the aggregator, scorer and payroll service.
type EngineConfig struct {
	Timezone             string                   `yaml:"timezone"`
	OvertimeBasis        attendance.OvertimeBasis `yaml:"overtime_basis"`
	StandardHoursPerDay  float64                  `yaml:"standard_hours_per_day"`
	StandardHoursPerWeek float64                  `yaml:"standard_hours_per_week"`
	OvertimeCapHours     float64                  `yaml:"overtime_cap_hours"`
	BatchConcurrency     int                      `yaml:"batch_concurrency"`
	Burnout              burnout.ScoringConfig    `yaml:"burnout"`
	TaxRules             []payroll.TaxRule        `yaml:"tax_rules"`

	// Compensations and ComplianceRules seed the in-memory repositories and
	// the CLI.
	Compensations   []payroll.Compensation         `yaml:"compensations"`
	ComplianceRules []compliance.CreateRuleRequest `yaml:"compliance_rules"`
}

func DefaultEngineConfig() EngineConfig {
	agg := attendance.DefaultAggregationConfig()
	return EngineConfig{
		Timezone:             "UTC",
		OvertimeBasis:        agg.OvertimeBasis,
		StandardHoursPerDay:  agg.StandardHoursPerDay,
		StandardHoursPerWeek: agg.StandardHoursPerWeek,
		BatchConcurrency:     8,
		Burnout:              burnout.DefaultScoringConfig(),
	}
}

// LoadEngineConfig reads a YAML file over the defaults. An empty path yields
// the defaults.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("read engine config %s: %w", path, err)
	}
	return ParseEngineConfig(data)
}

func ParseEngineConfig(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("parse engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid engine config: %w", err)
	}
	return cfg, nil
}

func (c EngineConfig) Validate() error {
	var errs validator.ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, validator.ValidationError{Field: field, Message: msg})
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		add("timezone", "unknown time zone")
	}
	if c.OvertimeBasis != attendance.OvertimeBasisDaily && c.OvertimeBasis != attendance.OvertimeBasisWeekly {
		add("overtime_basis", "must be 'daily' or 'weekly'")
	}
	if c.StandardHoursPerDay <= 0 || c.StandardHoursPerDay > 24 {
		add("standard_hours_per_day", "must be in (0, 24]")
	}
	if c.StandardHoursPerWeek <= 0 || c.StandardHoursPerWeek > 168 {
		add("standard_hours_per_week", "must be in (0, 168]")
	}
	if c.OvertimeCapHours < 0 {
		add("overtime_cap_hours", "must be non-negative")
	}
	if c.BatchConcurrency < 1 {
		add("batch_concurrency", "must be at least 1")
	}

	b := c.Burnout
	if b.Weights.Overtime < 0 || b.Weights.Workload < 0 || b.Weights.Absence < 0 {
		add("burnout.weights", "must be non-negative")
	}
	th := b.RiskLevelThresholds
	if !(th.Medium >= 0 && th.Medium <= th.High && th.High <= th.Critical && th.Critical <= 100) {
		add("burnout.risk_level_thresholds", "must satisfy 0 <= medium <= high <= critical <= 100")
	}
	if b.OvertimeCapHours <= 0 || b.WorkloadCapHours <= 0 || b.AttendanceEventCap <= 0 {
		add("burnout", "caps must be positive")
	}

	for i, rule := range c.TaxRules {
		if validator.IsEmpty(rule.Name) || !rule.Kind.Valid() || rule.Value.IsNegative() {
			add(fmt.Sprintf("tax_rules[%d]", i), "needs a name, a kind of 'fixed' or 'percentage' and a non-negative value")
		}
	}
	for i, comp := range c.Compensations {
		if validator.IsEmpty(comp.EmployeeID) || comp.BaseSalary.IsNegative() {
			add(fmt.Sprintf("compensations[%d]", i), "needs an employee_id and a non-negative base_salary")
		}
	}
	for i, rule := range c.ComplianceRules {
		var ruleErrs validator.ValidationErrors
		if errors.As(rule.Validate(), &ruleErrs) {
			for _, e := range ruleErrs {
				add(fmt.Sprintf("compliance_rules[%d].%s", i, e.Field), e.Message)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AggregationConfig resolves the time zone; call after Validate.
func (c EngineConfig) AggregationConfig() attendance.AggregationConfig {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return attendance.AggregationConfig{
		OvertimeBasis:        c.OvertimeBasis,
		StandardHoursPerDay:  c.StandardHoursPerDay,
		StandardHoursPerWeek: c.StandardHoursPerWeek,
		OvertimeCapHours:     c.OvertimeCapHours,
		Location:             loc,
	}
}
