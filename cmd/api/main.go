package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/config"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/workforce-engine/internal/handler/http"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/csvfile"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
	burnoutService "github.com/cmlabs-hris/workforce-engine/internal/service/burnout"
	complianceService "github.com/cmlabs-hris/workforce-engine/internal/service/compliance"
	payrollService "github.com/cmlabs-hris/workforce-engine/internal/service/payroll"
	"github.com/jackc/pgx/v5"
)

type repositories struct {
	attendance attendance.AttendanceRepository
	compliance compliance.ComplianceRepository
	payroll    payroll.PayrollRepository
	close      func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	engine := cfg.Engine
	aggregator := attendanceService.NewAggregator(engine.AggregationConfig())

	payrollSvc := payrollService.NewPayrollService(repos.payroll, payrollService.NewCalculator(), engine.TaxRules, engine.BatchConcurrency)
	complianceSvc := complianceService.NewComplianceService(repos.compliance, repos.attendance, aggregator, complianceService.NewEvaluator(), engine.BatchConcurrency)
	burnoutSvc := burnoutService.NewBurnoutService(repos.attendance, aggregator, burnoutService.NewScorer(engine.Burnout), engine.BatchConcurrency)

	if cfg.App.Storage == config.StorageMemory {
		for _, rule := range engine.ComplianceRules {
			if _, err := complianceSvc.CreateRule(ctx, rule); err != nil {
				return fmt.Errorf("seed compliance rule %q: %w", rule.Name, err)
			}
		}
	}

	router := appHTTP.NewRouter(
		logger,
		cfg.CORS.AllowedOrigins,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewComplianceHandler(complianceSvc),
		appHTTP.NewBurnoutHandler(burnoutSvc),
	)

	scheduler := cron.NewScheduler()
	if cfg.Cron.ComplianceEnabled {
		cron.NewComplianceJobs(complianceSvc, engine.AggregationConfig().Location).
			RegisterJobs(scheduler, cfg.Cron.ComplianceInterval)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", srv.Addr, "storage", cfg.App.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.App.Storage {
	case config.StorageMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		att := memory.NewAttendanceRepository()
		if cfg.App.AttendanceCSV != "" {
			entries, err := readAttendance(cfg.App.AttendanceCSV)
			if err != nil {
				return repositories{}, err
			}
			att.Add(entries...)
		}
		return repositories{
			attendance: att,
			compliance: memory.NewComplianceRepository(),
			payroll:    memory.NewPayrollRepository(cfg.Engine.Compensations...),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), int32(cfg.Engine.BatchConcurrency)+2)
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("migrate database: %w", err)
	}

	err = postgresql.WithTransaction(ctx, db, func(ctx context.Context, _ pgx.Tx) error {
		for _, c := range cfg.Engine.Compensations {
			if err := postgresql.UpsertCompensation(ctx, db, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("seed compensations: %w", err)
	}

	return repositories{
		attendance: postgresql.NewAttendanceRepository(db),
		compliance: postgresql.NewComplianceRepository(db),
		payroll:    postgresql.NewPayrollRepository(db),
		close:      db.Close,
	}, nil
}

func readAttendance(path string) ([]attendance.AttendanceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attendance csv: %w", err)
	}
	defer f.Close()

	entries, err := csvfile.ReadAttendance(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("attendance loaded", "path", path, "entries", len(entries))
	return entries, nil
}
