package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	mu      sync.RWMutex
	entries map[string][]attendance.AttendanceEntry
}

// AttendanceStore is the in-memory attendance repository. Add is used to
// seed it from CSV imports and tests.
type AttendanceStore interface {
	attendance.AttendanceRepository
	Add(entries ...attendance.AttendanceEntry)
}

func NewAttendanceRepository(entries ...attendance.AttendanceEntry) AttendanceStore {
	r := &attendanceRepository{entries: make(map[string][]attendance.AttendanceEntry)}
	r.Add(entries...)
	return r
}

func (r *attendanceRepository) Add(entries ...attendance.AttendanceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		r.entries[e.EmployeeID] = append(r.entries[e.EmployeeID], e)
	}
}

// GetRawAttendance returns entries that start before end and are either open
// or end after start.
func (r *attendanceRepository) GetRawAttendance(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []attendance.AttendanceEntry
	for _, e := range r.entries[employeeID] {
		if !e.Start.Before(end) {
			continue
		}
		if e.End != nil && !e.End.After(start) && !e.Start.Equal(start) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *attendanceRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
