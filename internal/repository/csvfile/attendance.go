// Package csvfile loads attendance from CSV and writes payroll registers,
// for offline runs of the engine.
package csvfile

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	"github.com/gocarina/gocsv"
)

// AttendanceRow is one line of an attendance file:
//
//	id,employee_id,start,end,kind
//
// start and end accept RFC3339 or YYYY-MM-DD; an empty end is an open entry.
type AttendanceRow struct {
	ID         string `csv:"id,omitempty"`
	EmployeeID string `csv:"employee_id"`
	Start      string `csv:"start"`
	End        string `csv:"end,omitempty"`
	Kind       string `csv:"kind"`
}

func (r AttendanceRow) toEntry(line int) (attendance.AttendanceEntry, error) {
	if strings.TrimSpace(r.EmployeeID) == "" {
		return attendance.AttendanceEntry{}, fmt.Errorf("line %d: employee_id is required", line)
	}
	start, ok := validator.ParseDateOrDateTime(strings.TrimSpace(r.Start))
	if !ok {
		return attendance.AttendanceEntry{}, fmt.Errorf("line %d: invalid start %q", line, r.Start)
	}

	e := attendance.AttendanceEntry{
		ID:         strings.TrimSpace(r.ID),
		EmployeeID: strings.TrimSpace(r.EmployeeID),
		Start:      start,
		Kind:       attendance.EntryKind(strings.ToLower(strings.TrimSpace(r.Kind))),
	}
	if end := strings.TrimSpace(r.End); end != "" {
		t, ok := validator.ParseDateOrDateTime(end)
		if !ok {
			return attendance.AttendanceEntry{}, fmt.Errorf("line %d: invalid end %q", line, r.End)
		}
		e.End = &t
	}
	return e, nil
}

// ReadAttendance decodes entries from CSV. Unknown kinds are kept so the
// aggregator can report them.
func ReadAttendance(in io.Reader) ([]attendance.AttendanceEntry, error) {
	var rows []AttendanceRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("decode attendance csv: %w", err)
	}

	entries := make([]attendance.AttendanceEntry, 0, len(rows))
	for i, row := range rows {
		// Line 1 is the header.
		e, err := row.toEntry(i + 2)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadAttendance reads path into an in-memory attendance repository.
func LoadAttendance(path string) (memory.AttendanceStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open attendance file: %w", err)
	}
	defer f.Close()

	entries, err := ReadAttendance(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return memory.NewAttendanceRepository(entries...), nil
}

// WriteAttendance encodes entries in the same layout ReadAttendance accepts.
func WriteAttendance(out io.Writer, entries []attendance.AttendanceEntry) error {
	rows := make([]AttendanceRow, 0, len(entries))
	for _, e := range entries {
		row := AttendanceRow{
			ID:         e.ID,
			EmployeeID: e.EmployeeID,
			Start:      e.Start.Format(time.RFC3339),
			Kind:       string(e.Kind),
		}
		if e.End != nil {
			row.End = e.End.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, out)
}
