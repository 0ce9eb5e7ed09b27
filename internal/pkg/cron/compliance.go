package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/compliance"
)

// ComplianceJobs evaluates every employee against the active rules.
type ComplianceJobs struct {
	complianceService compliance.ComplianceService
	location          *time.Location
	now               func() time.Time
}

func NewComplianceJobs(complianceService compliance.ComplianceService, location *time.Location) *ComplianceJobs {
	if location == nil {
		location = time.UTC
	}
	return &ComplianceJobs{
		complianceService: complianceService,
		location:          location,
		now:               time.Now,
	}
}

func (j *ComplianceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("evaluate_compliance_previous_week", interval, j.EvaluatePreviousWeek)
}

// EvaluatePreviousWeek covers the last complete ISO week. Re-runs are cheap:
// open violations already logged are suppressed by the repository.
func (j *ComplianceJobs) EvaluatePreviousWeek(ctx context.Context) error {
	start, end := PreviousISOWeek(j.now(), j.location)

	slog.Info("Cron: Starting compliance evaluation",
		"period_start", start.Format(time.RFC3339),
		"period_end", end.Format(time.RFC3339))

	resp, err := j.complianceService.EvaluateCompliance(ctx, compliance.EvaluateRequest{
		PeriodStart: start.Format(time.RFC3339),
		PeriodEnd:   end.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate compliance: %w", err)
	}

	suppressed := 0
	for _, r := range resp.Results {
		suppressed += r.Suppressed
	}
	slog.Info("Cron: Compliance evaluation finished",
		"employees", len(resp.Results),
		"violations", resp.TotalViolations,
		"suppressed", suppressed,
		"failed", resp.FailedEmployees)
	return nil
}

// PreviousISOWeek returns [Monday 00:00, next Monday 00:00) of the week
// before the one containing now, in loc.
func PreviousISOWeek(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7 // days since Monday
	thisMonday := time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
	return thisMonday.AddDate(0, 0, -7), thisMonday
}
