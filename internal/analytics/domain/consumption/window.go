package consumption

import (
	"fmt"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// Window is an inclusive range of calendar dates. A window whose start is
// after its end selects nothing.
type Window struct {
	Start ingestion.Date
	End   ingestion.Date
}

// NewWindow builds a window from its bounds.
func NewWindow(start, end ingestion.Date) Window {
	return Window{Start: start, End: end}
}

// ParseWindow parses YYYY-MM-DD bounds.
func ParseWindow(start, end string) (Window, error) {
	s, err := ingestion.ParseDate(start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	e, err := ingestion.ParseDate(end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}
	return Window{Start: s, End: e}, nil
}

// TableWindow spans every date of the table. ok is false for an empty table.
func TableWindow(table *ingestion.NormalizedTable) (Window, bool) {
	if table == nil {
		return Window{}, false
	}
	lo, hi, ok := table.DateBounds()
	return Window{Start: lo, End: hi}, ok
}

// Empty reports whether the window selects no date.
func (w Window) Empty() bool { return w.Start.After(w.End) }

// Contains reports whether d is inside the window.
func (w Window) Contains(d ingestion.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Clamp restricts w to bounds.
func (w Window) Clamp(bounds Window) Window {
	out := w
	if out.Start.Before(bounds.Start) {
		out.Start = bounds.Start
	}
	if out.End.After(bounds.End) {
		out.End = bounds.End
	}
	return out
}

func (w Window) String() string {
	return w.Start.String() + " to " + w.End.String()
}
