package schedule

import (
	"time"

	"github.com/google/uuid"
)

// WorkingHours is one contiguous stretch a provider works on a calendar date.
// A provider may have several per date (split shifts). Entries with
// IsAvailable=false represent blocked-out stretches and yield no candidates.
type WorkingHours struct {
	ProviderID  uuid.UUID
	Date        time.Time
	StartTime   time.Time
	EndTime     time.Time
	IsAvailable bool
}

func (wh WorkingHours) Window() TimeWindow {
	// Stored rows always satisfy start < end; guard anyway so a bad row
	// degrades to "no candidates" instead of a panic downstream.
	w, err := NewTimeWindow(wh.StartTime, wh.EndTime)
	if err != nil {
		return TimeWindow{}
	}
	return w
}
