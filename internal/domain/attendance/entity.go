package attendance

import (
	"time"
)

// EntryKind enum
type EntryKind string

const (
	EntryKindPresent EntryKind = "present"
	EntryKindAbsent  EntryKind = "absent"
	EntryKindLate    EntryKind = "late"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindPresent, EntryKindAbsent, EntryKindLate:
		return true
	}
	return false
}

// AttendanceEntry - Raw clock-in/clock-out fact for one employee
type AttendanceEntry struct {
	ID         string
	EmployeeID string
	Start      time.Time
	End        *time.Time // nil while the employee is still clocked in
	Kind       EntryKind
}

// Closed reports whether the entry has a clock-out.
func (e AttendanceEntry) Closed() bool {
	return e.End != nil
}

// Worked reports whether the entry contributes hours when closed.
func (e AttendanceEntry) Worked() bool {
	return e.Kind == EntryKindPresent || e.Kind == EntryKindLate
}

// PeriodMetrics - Aggregated, immutable view of one employee over one window.
// Passed by value to every consumer.
type PeriodMetrics struct {
	EmployeeID         string
	PeriodStart        time.Time
	PeriodEnd          time.Time
	TotalWorkedHours   float64
	TotalOvertimeHours float64
	AbsenceCount       int
	LateCount          int

	DaysWorked         int
	MaxConsecutiveDays int
	MinRestHours       *float64 // nil with fewer than two closed shifts
}

// Weeks is the window length in weeks, never less than one.
func (m PeriodMetrics) Weeks() float64 {
	weeks := m.PeriodEnd.Sub(m.PeriodStart).Hours() / (7 * 24)
	if weeks < 1 {
		return 1
	}
	return weeks
}

// OvertimeBasis enum
type OvertimeBasis string

const (
	OvertimeBasisDaily  OvertimeBasis = "daily"
	OvertimeBasisWeekly OvertimeBasis = "weekly"
)

// AggregationConfig - Thresholds used to split worked hours into overtime
type AggregationConfig struct {
	OvertimeBasis        OvertimeBasis
	StandardHoursPerDay  float64
	StandardHoursPerWeek float64
	OvertimeCapHours     float64 // 0 means uncapped
	Location             *time.Location
}

func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		OvertimeBasis:        OvertimeBasisWeekly,
		StandardHoursPerDay:  8,
		StandardHoursPerWeek: 40,
		Location:             time.UTC,
	}
}

// WarningCode enum
type WarningCode string

const (
	WarningOpenEntry     WarningCode = "open_entry"
	WarningInvertedEntry WarningCode = "inverted_entry"
	WarningOutsideWindow WarningCode = "outside_window"
	WarningOtherEmployee WarningCode = "other_employee"
	WarningUnknownKind   WarningCode = "unknown_kind"
)

// Warning - An entry the aggregator skipped, reported next to the metrics
type Warning struct {
	EntryID string      `json:"entry_id"`
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
