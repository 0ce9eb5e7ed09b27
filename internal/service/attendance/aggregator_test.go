package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-11-04 is a Monday.
var weekStart = time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return weekStart.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func ptr(t time.Time) *time.Time { return &t }

func entry(id string, kind attendance.EntryKind, start time.Time, end *time.Time) attendance.AttendanceEntry {
	return attendance.AttendanceEntry{ID: id, EmployeeID: "emp-1", Start: start, End: end, Kind: kind}
}

// fiveEightHourDays returns Mon-Fri 09:00-17:00 shifts, 40 hours in total.
func fiveEightHourDays() []attendance.AttendanceEntry {
	var entries []attendance.AttendanceEntry
	for d := 0; d < 5; d++ {
		entries = append(entries, entry(
			"e"+string(rune('0'+d)), attendance.EntryKindPresent, at(d, 9, 0), ptr(at(d, 17, 0)),
		))
	}
	return entries
}

func TestAggregate_InvalidWindow(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	_, _, err := agg.Aggregate("emp-1", weekStart, weekStart, nil)
	require.ErrorIs(t, err, attendance.ErrInvalidWindow)
	assert.Contains(t, err.Error(), "emp-1")

	_, _, err = agg.Aggregate("emp-1", weekStart.Add(time.Hour), weekStart, nil)
	assert.ErrorIs(t, err, attendance.ErrInvalidWindow)
}

func TestAggregate_ExactlyStandardWeekHasNoOvertime(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	m, warnings, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), fiveEightHourDays())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 40.0, m.TotalWorkedHours)
	assert.Equal(t, 0.0, m.TotalOvertimeHours)
	assert.Equal(t, 5, m.DaysWorked)
	assert.Equal(t, 5, m.MaxConsecutiveDays)
}

func TestAggregate_OneMinuteOverStandardWeek(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	entries := fiveEightHourDays()
	entries[4].End = ptr(at(4, 17, 1))

	m, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Greater(t, m.TotalOvertimeHours, 0.0)
	assert.InDelta(t, 1.0/60.0, m.TotalOvertimeHours, 1e-9)
}

func TestAggregate_DailyBasis(t *testing.T) {
	cfg := attendance.DefaultAggregationConfig()
	cfg.OvertimeBasis = attendance.OvertimeBasisDaily
	agg := NewAggregator(cfg)

	entries := []attendance.AttendanceEntry{
		entry("a", attendance.EntryKindPresent, at(0, 8, 0), ptr(at(0, 18, 0))), // 10h
		entry("b", attendance.EntryKindPresent, at(1, 9, 0), ptr(at(1, 15, 0))), // 6h
	}

	m, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Equal(t, 16.0, m.TotalWorkedHours)
	assert.Equal(t, 2.0, m.TotalOvertimeHours)
}

func TestAggregate_OvertimeCap(t *testing.T) {
	cfg := attendance.DefaultAggregationConfig()
	cfg.OvertimeBasis = attendance.OvertimeBasisDaily
	cfg.OvertimeCapHours = 1
	agg := NewAggregator(cfg)

	entries := []attendance.AttendanceEntry{
		entry("a", attendance.EntryKindPresent, at(0, 6, 0), ptr(at(0, 20, 0))),
	}

	m, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Equal(t, 14.0, m.TotalWorkedHours)
	assert.Equal(t, 1.0, m.TotalOvertimeHours)
}

func TestAggregate_OpenEntryIsExcludedWithWarning(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	entries := []attendance.AttendanceEntry{
		entry("closed", attendance.EntryKindPresent, at(0, 9, 0), ptr(at(0, 17, 0))),
		entry("open", attendance.EntryKindPresent, at(1, 9, 0), nil),
	}

	m, warnings, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Equal(t, 8.0, m.TotalWorkedHours)
	require.Len(t, warnings, 1)
	assert.Equal(t, "open", warnings[0].EntryID)
	assert.Equal(t, attendance.WarningOpenEntry, warnings[0].Code)
}

func TestAggregate_CountsAbsencesAndLateness(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	entries := []attendance.AttendanceEntry{
		entry("late", attendance.EntryKindLate, at(0, 10, 0), ptr(at(0, 17, 0))),
		entry("absent-1", attendance.EntryKindAbsent, at(1, 0, 0), nil),
		entry("absent-2", attendance.EntryKindAbsent, at(2, 0, 0), nil),
	}

	m, warnings, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, m.LateCount)
	assert.Equal(t, 2, m.AbsenceCount)
	assert.Equal(t, 7.0, m.TotalWorkedHours)
}

func TestAggregate_SkipsForeignInvertedAndOutsideEntries(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	foreign := entry("foreign", attendance.EntryKindPresent, at(0, 9, 0), ptr(at(0, 17, 0)))
	foreign.EmployeeID = "emp-2"
	entries := []attendance.AttendanceEntry{
		foreign,
		entry("inverted", attendance.EntryKindPresent, at(1, 17, 0), ptr(at(1, 9, 0))),
		entry("outside", attendance.EntryKindPresent, at(10, 9, 0), ptr(at(10, 17, 0))),
		entry("weird", attendance.EntryKind("remote"), at(2, 9, 0), ptr(at(2, 17, 0))),
	}

	m, warnings, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.TotalWorkedHours)

	codes := make([]attendance.WarningCode, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []attendance.WarningCode{
		attendance.WarningOtherEmployee,
		attendance.WarningInvertedEntry,
		attendance.WarningOutsideWindow,
		attendance.WarningUnknownKind,
	}, codes)
}

func TestAggregate_ClipsToWindow(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	entries := []attendance.AttendanceEntry{
		entry("straddle", attendance.EntryKindPresent, weekStart.Add(-2*time.Hour), ptr(weekStart.Add(3*time.Hour))),
	}

	m, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.TotalWorkedHours)
}

func TestAggregate_RestAndConsecutiveDays(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())

	entries := []attendance.AttendanceEntry{
		entry("mon", attendance.EntryKindPresent, at(0, 14, 0), ptr(at(0, 22, 0))),
		entry("tue", attendance.EntryKindPresent, at(1, 6, 0), ptr(at(1, 14, 0))),
		entry("thu", attendance.EntryKindPresent, at(3, 9, 0), ptr(at(3, 17, 0))),
	}

	m, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	require.NotNil(t, m.MinRestHours)
	assert.Equal(t, 8.0, *m.MinRestHours)
	assert.Equal(t, 2, m.MaxConsecutiveDays)
	assert.Equal(t, 3, m.DaysWorked)

	single, _, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries[:1])
	require.NoError(t, err)
	assert.Nil(t, single.MinRestHours)
}

func TestAggregate_DeterministicRegardlessOfInputOrder(t *testing.T) {
	agg := NewAggregator(attendance.DefaultAggregationConfig())
	entries := fiveEightHourDays()
	entries = append(entries, entry("open", attendance.EntryKindLate, at(5, 9, 0), nil))

	reversed := make([]attendance.AttendanceEntry, len(entries))
	for i := range entries {
		reversed[len(entries)-1-i] = entries[i]
	}

	m1, w1, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)
	m2, w2, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), reversed)
	require.NoError(t, err)
	m3, w3, err := agg.Aggregate("emp-1", weekStart, weekStart.AddDate(0, 0, 7), entries)
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	assert.Equal(t, m1, m3)
	assert.Equal(t, w1, w2)
	assert.Equal(t, w1, w3)
}

func TestPeriodMetrics_Weeks(t *testing.T) {
	m := attendance.PeriodMetrics{PeriodStart: weekStart, PeriodEnd: weekStart.AddDate(0, 0, 14)}
	assert.Equal(t, 2.0, m.Weeks())

	short := attendance.PeriodMetrics{PeriodStart: weekStart, PeriodEnd: weekStart.AddDate(0, 0, 1)}
	assert.Equal(t, 1.0, short.Weeks())
}
