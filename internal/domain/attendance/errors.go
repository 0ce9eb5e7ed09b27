package attendance

import "errors"

// Attendance domain errors
var (
	// ErrInvalidWindow is returned when a period does not end after it starts.
	ErrInvalidWindow = errors.New("invalid time window: period end must be after period start")
)
