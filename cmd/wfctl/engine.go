package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/workforce-engine/internal/config"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/burnout"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/csvfile"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
	burnoutService "github.com/cmlabs-hris/workforce-engine/internal/service/burnout"
	complianceService "github.com/cmlabs-hris/workforce-engine/internal/service/compliance"
	payrollService "github.com/cmlabs-hris/workforce-engine/internal/service/payroll"
)

// engine is the in-memory service graph of one CLI invocation.
type engine struct {
	cfg         config.EngineConfig
	payrollRepo memory.PayrollStore
	payroll     payroll.PayrollService
	compliance  compliance.ComplianceService
	burnout     burnout.BurnoutService
}

func (c *cli) loadEngine(ctx context.Context, needAttendance bool) (*engine, error) {
	cfg, err := config.LoadEngineConfig(c.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if n := c.v.GetInt("concurrency"); n > 0 {
		cfg.BatchConcurrency = n
	}

	attendanceRepo := memory.NewAttendanceRepository()
	if path := c.v.GetString("attendance"); path != "" {
		attendanceRepo, err = csvfile.LoadAttendance(path)
		if err != nil {
			return nil, err
		}
	} else if needAttendance {
		return nil, fmt.Errorf("--attendance is required")
	}

	payrollRepo := memory.NewPayrollRepository(cfg.Compensations...)
	aggregator := attendanceService.NewAggregator(cfg.AggregationConfig())

	e := &engine{
		cfg:         cfg,
		payrollRepo: payrollRepo,
		payroll:     payrollService.NewPayrollService(payrollRepo, payrollService.NewCalculator(), cfg.TaxRules, cfg.BatchConcurrency),
		compliance: complianceService.NewComplianceService(
			memory.NewComplianceRepository(), attendanceRepo, aggregator, complianceService.NewEvaluator(), cfg.BatchConcurrency,
		),
		burnout: burnoutService.NewBurnoutService(
			attendanceRepo, aggregator, burnoutService.NewScorer(cfg.Burnout), cfg.BatchConcurrency,
		),
	}

	for _, rule := range cfg.ComplianceRules {
		if _, err := e.compliance.CreateRule(ctx, rule); err != nil {
			return nil, fmt.Errorf("compliance rule %q: %w", rule.Name, err)
		}
	}
	return e, nil
}
