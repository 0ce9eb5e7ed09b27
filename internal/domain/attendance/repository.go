package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines read access to raw attendance facts.
// The aggregator never calls it; services resolve entries first and hand them over.
type AttendanceRepository interface {
	// GetRawAttendance returns entries of employeeID overlapping [start, end)
	GetRawAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceEntry, error)

	// ListEmployeeIDs returns every employee with attendance on record, sorted
	ListEmployeeIDs(ctx context.Context) ([]string, error)
}
