// Package memory provides in-process repository implementations used by the
// CLI, tests and deployments without PostgreSQL.
package memory

import "time"

// now is replaced in tests that need stable timestamps.
var now = func() time.Time { return time.Now().UTC() }

// paginate returns the [offset, end) bounds of page within n items.
// A limit of zero or less returns everything.
func paginate(n, page, limit int) (int, int) {
	if limit <= 0 {
		return 0, n
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}
