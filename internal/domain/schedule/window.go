package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("start time must be before end time")

// TimeWindow is a half-open interval [start, end) on a single provider's
// calendar. The far boundary is open: a window ending at 10:00 does not
// overlap one starting at 10:00, so back-to-back bookings are legal.
type TimeWindow struct {
	start time.Time
	end   time.Time
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{start: start, end: end}, nil
}

// WindowAt builds a window of the given duration starting at start.
func WindowAt(start time.Time, duration time.Duration) (TimeWindow, error) {
	return NewTimeWindow(start, start.Add(duration))
}

func (w TimeWindow) Start() time.Time {
	return w.start
}

func (w TimeWindow) End() time.Time {
	return w.end
}

func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Overlaps implements the half-open interval test:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}

func (w TimeWindow) OverlapsAny(others []TimeWindow) bool {
	for _, o := range others {
		if w.Overlaps(o) {
			return true
		}
	}
	return false
}

func (w TimeWindow) Equal(other TimeWindow) bool {
	return w.start.Equal(other.start) && w.end.Equal(other.end)
}

// Date returns midnight of the calendar day the window starts on, in the
// window's own location. Ledger contention is scoped per (provider, Date).
func (w TimeWindow) Date() time.Time {
	return time.Date(w.start.Year(), w.start.Month(), w.start.Day(), 0, 0, 0, 0, w.start.Location())
}

func (w TimeWindow) IsZero() bool {
	return w.start.IsZero() && w.end.IsZero()
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s,%s)", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}
