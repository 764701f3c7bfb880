package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Candidate is an ephemeral, unpersisted window offered to a client. It only
// exists to be claimed; nothing below the usecase layer ever stores one.
type Candidate struct {
	ProviderID uuid.UUID
	Start      time.Time
	End        time.Time
}

func (c Candidate) Window() TimeWindow {
	w, _ := NewTimeWindow(c.Start, c.End)
	return w
}

// ProviderDay bundles the per-provider inputs to the calculator for one date:
// the provider's working-hour stretches and its already held/occupied
// intervals.
type ProviderDay struct {
	ProviderID uuid.UUID
	Working    []WorkingHours
	Busy       []TimeWindow
}

// BuildCandidates computes every offerable window of length duration across
// the given providers, stepping candidate starts at the given granularity.
//
// Pure function over its inputs: no side effects, safe to call concurrently
// with claims, cheap enough to back live UI refresh. Empty input produces an
// empty result, never an error.
//
// Candidates are ordered by start time, then provider id for a deterministic
// tie-break.
func BuildCandidates(days []ProviderDay, duration, step time.Duration) []Candidate {
	if duration <= 0 || step <= 0 {
		return nil
	}

	var out []Candidate
	for _, day := range days {
		for _, wh := range day.Working {
			if !wh.IsAvailable {
				continue
			}
			win := wh.Window()
			if win.IsZero() || win.Duration() < duration {
				continue
			}
			out = append(out, candidatesInWindow(day.ProviderID, win, day.Busy, duration, step)...)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ProviderID.String() < out[j].ProviderID.String()
	})
	return out
}

func candidatesInWindow(providerID uuid.UUID, win TimeWindow, busy []TimeWindow, duration, step time.Duration) []Candidate {
	var out []Candidate
	for cursor := win.Start(); !cursor.Add(duration).After(win.End()); cursor = cursor.Add(step) {
		cand, err := WindowAt(cursor, duration)
		if err != nil {
			return out
		}
		if cand.OverlapsAny(busy) {
			continue
		}
		out = append(out, Candidate{
			ProviderID: providerID,
			Start:      cand.Start(),
			End:        cand.End(),
		})
	}
	return out
}
