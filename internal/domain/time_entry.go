package domain

import "time"

// TimeEntry represents a tracked span of work in the domain.
// Empty reference IDs mean the entry is not tied to that entity.
type TimeEntry struct {
	WorkspaceID string
	ProjectID   string
	UserID      string
	Description string
	DurationMS  int64
	Total       *float64 // Set once the entry has been priced
}

// Duration returns the elapsed milliseconds between start and end.
// A nil end means the entry is still running and now is used instead.
// Out-of-order intervals yield a negative duration which is returned as is.
func Duration(start time.Time, end *time.Time, now time.Time) int64 {
	stop := now
	if end != nil {
		stop = *end
	}
	return stop.Sub(start).Milliseconds()
}
