package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
)

// Aggregator collapses raw attendance entries into PeriodMetrics.
// It holds configuration only and is safe for concurrent use.
type Aggregator struct {
	cfg attendance.AggregationConfig
}

func NewAggregator(cfg attendance.AggregationConfig) *Aggregator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.OvertimeBasis == "" {
		cfg.OvertimeBasis = attendance.OvertimeBasisWeekly
	}
	return &Aggregator{cfg: cfg}
}

type shift struct {
	start time.Time
	end   time.Time
}

// Aggregate computes metrics for employeeID over [periodStart, periodEnd).
// Entries that cannot contribute are skipped and reported as warnings.
func (a *Aggregator) Aggregate(
	employeeID string,
	periodStart, periodEnd time.Time,
	entries []attendance.AttendanceEntry,
) (attendance.PeriodMetrics, []attendance.Warning, error) {
	if !periodEnd.After(periodStart) {
		return attendance.PeriodMetrics{}, nil, fmt.Errorf(
			"employee %s window %s..%s: %w",
			employeeID, periodStart.Format(time.RFC3339), periodEnd.Format(time.RFC3339), attendance.ErrInvalidWindow,
		)
	}

	metrics := attendance.PeriodMetrics{
		EmployeeID:  employeeID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	sorted := make([]attendance.AttendanceEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].ID < sorted[j].ID
	})

	var (
		warnings []attendance.Warning
		total    time.Duration
		shifts   []shift
		perDay   = make(map[time.Time]time.Duration)
		perWeek  = make(map[[2]int]time.Duration)
	)

	for _, e := range sorted {
		if e.EmployeeID != "" && e.EmployeeID != employeeID {
			warnings = append(warnings, warn(e, attendance.WarningOtherEmployee, "entry belongs to employee "+e.EmployeeID))
			continue
		}
		if !e.Kind.Valid() {
			warnings = append(warnings, warn(e, attendance.WarningUnknownKind, fmt.Sprintf("unknown entry kind %q", e.Kind)))
			continue
		}
		if e.End != nil && e.End.Before(e.Start) {
			warnings = append(warnings, warn(e, attendance.WarningInvertedEntry, "clock-out is before clock-in"))
			continue
		}
		if !overlaps(e, periodStart, periodEnd) {
			warnings = append(warnings, warn(e, attendance.WarningOutsideWindow, "entry does not overlap the period"))
			continue
		}

		switch e.Kind {
		case attendance.EntryKindAbsent:
			metrics.AbsenceCount++
			continue
		case attendance.EntryKindLate:
			metrics.LateCount++
		}

		if !e.Closed() {
			warnings = append(warnings, warn(e, attendance.WarningOpenEntry, "entry is still open and contributes no hours"))
			continue
		}

		start, end := clip(e.Start, *e.End, periodStart, periodEnd)
		worked := end.Sub(start)
		if worked <= 0 {
			continue
		}

		total += worked
		shifts = append(shifts, shift{start: e.Start, end: *e.End})

		local := start.In(a.cfg.Location)
		perDay[civilDate(local)] += worked
		year, week := local.ISOWeek()
		perWeek[[2]int{year, week}] += worked
	}

	metrics.TotalWorkedHours = hours(total)
	metrics.TotalOvertimeHours = a.overtime(perDay, perWeek)
	metrics.DaysWorked = len(perDay)
	metrics.MaxConsecutiveDays = maxConsecutiveDays(perDay)
	metrics.MinRestHours = minRest(shifts)

	return metrics, warnings, nil
}

func (a *Aggregator) overtime(perDay map[time.Time]time.Duration, perWeek map[[2]int]time.Duration) float64 {
	var over time.Duration
	switch a.cfg.OvertimeBasis {
	case attendance.OvertimeBasisDaily:
		limit := fromHours(a.cfg.StandardHoursPerDay)
		for _, d := range perDay {
			if d > limit {
				over += d - limit
			}
		}
	default:
		limit := fromHours(a.cfg.StandardHoursPerWeek)
		for _, d := range perWeek {
			if d > limit {
				over += d - limit
			}
		}
	}

	if a.cfg.OvertimeCapHours > 0 {
		if limit := fromHours(a.cfg.OvertimeCapHours); over > limit {
			over = limit
		}
	}
	return hours(over)
}

func overlaps(e attendance.AttendanceEntry, start, end time.Time) bool {
	if e.End == nil || e.End.Equal(e.Start) {
		return !e.Start.Before(start) && e.Start.Before(end)
	}
	return e.Start.Before(end) && e.End.After(start)
}

func clip(s, e, start, end time.Time) (time.Time, time.Time) {
	if s.Before(start) {
		s = start
	}
	if e.After(end) {
		e = end
	}
	return s, e
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func maxConsecutiveDays(perDay map[time.Time]time.Duration) int {
	if len(perDay) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// minRest is the shortest gap between the end of one shift and the start of
// the next. Overlapping shifts count as zero rest.
func minRest(shifts []shift) *float64 {
	if len(shifts) < 2 {
		return nil
	}
	var shortest time.Duration = -1
	lastEnd := shifts[0].end
	for _, s := range shifts[1:] {
		gap := s.start.Sub(lastEnd)
		if gap < 0 {
			gap = 0
		}
		if shortest < 0 || gap < shortest {
			shortest = gap
		}
		if s.end.After(lastEnd) {
			lastEnd = s.end
		}
	}
	h := hours(shortest)
	return &h
}

func warn(e attendance.AttendanceEntry, code attendance.WarningCode, msg string) attendance.Warning {
	return attendance.Warning{EntryID: e.ID, Code: code, Message: msg}
}

func hours(d time.Duration) float64 {
	return float64(d) / float64(time.Hour)
}

func fromHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
