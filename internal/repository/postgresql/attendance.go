package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// GetRawAttendance returns entries that start before end and are either
// open or end after start. Filtering against the window is left to the
// aggregator so skipped entries are reported.
func (r *attendanceRepository) GetRawAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, start_at, end_at, kind
		FROM attendance_entries
		WHERE employee_id = $1
		  AND start_at < $3
		  AND (end_at IS NULL OR end_at > $2 OR start_at = $2)
		ORDER BY start_at, id
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var entries []attendance.AttendanceEntry
	for rows.Next() {
		var e attendance.AttendanceEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Start, &e.End, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan attendance entry: %w", err)
		}
		e.Kind = attendance.EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance rows: %w", err)
	}

	return entries, nil
}

func (r *attendanceRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT employee_id FROM attendance_entries ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertEntries bulk-loads attendance, used by imports and tests.
func InsertEntries(ctx context.Context, db *database.DB, entries []attendance.AttendanceEntry) error {
	q := GetQuerier(ctx, db)
	for _, e := range entries {
		_, err := q.Exec(ctx,
			`INSERT INTO attendance_entries (employee_id, start_at, end_at, kind) VALUES ($1, $2, $3, $4)`,
			e.EmployeeID, e.Start, e.End, string(e.Kind),
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance for employee %s: %w", e.EmployeeID, err)
		}
	}
	return nil
}
