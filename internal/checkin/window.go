package checkin

import "time"

// windowMargin is how far the valid check-in window extends beyond the
// scheduled start and end of an event.
const windowMargin = time.Hour

// Window is the interval during which check-in attempts for an event are
// considered on time. It is advisory: the protocol records attempts outside
// the window and flags them, it never rejects them.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow derives the check-in window for an event: one hour before the
// scheduled start through one hour after the scheduled end. It must be
// recomputed whenever the event's start or end changes.
func ComputeWindow(start, end time.Time) Window {
	return Window{
		Start: start.Add(-windowMargin),
		End:   end.Add(windowMargin),
	}
}

// Contains reports whether now falls within the window, inclusive on both
// ends.
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}
