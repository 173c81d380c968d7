package reconcile

import (
	"fmt"
	"time"
)

// Window is a daily time-of-day interval with minute granularity. When the
// start is later than the end the window wraps midnight (e.g. 22:00-06:00).
type Window struct {
	start int // minutes since midnight
	end   int
}

// ParseWindow parses a pair of HH:MM strings. Either value missing means no
// window is configured and nil is returned without an error; the caller
// treats a nil window as always outside schedule.
func ParseWindow(start, end string) (*Window, error) {
	if start == "" || end == "" {
		return nil, nil
	}
	s, err := parseMinutes(start)
	if err != nil {
		return nil, fmt.Errorf("start time %q: %w", start, err)
	}
	e, err := parseMinutes(end)
	if err != nil {
		return nil, fmt.Errorf("end time %q: %w", end, err)
	}
	return &Window{start: s, end: e}, nil
}

func parseMinutes(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether t falls inside the window. Both ends are
// inclusive. Only the wall-clock time of t matters; callers convert to the
// panel timezone first.
func (w *Window) Contains(t time.Time) bool {
	now := t.Hour()*60 + t.Minute()
	if w.start <= w.end {
		return w.start <= now && now <= w.end
	}
	// Overnight wrap: inside from start until midnight, or from midnight
	// until end.
	return now >= w.start || now <= w.end
}
