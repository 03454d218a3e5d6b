package calendar

// Navigator holds the viewed month and the selected date of one calendar
// view. It is owned by a single consumer and is not safe for concurrent use.
type Navigator struct {
	clock       Clock
	viewed      YearMonth
	selected    Date
	hasSelected bool
}

// NewNavigator starts on the clock's current month with today selected.
// A nil clock means RealClock.
func NewNavigator(clock Clock) *Navigator {
	if clock == nil {
		clock = RealClock{}
	}
	n := &Navigator{clock: clock}
	n.GoToToday()
	return n
}

// ViewedMonth returns the month currently laid out.
func (n *Navigator) ViewedMonth() YearMonth {
	return n.viewed
}

// Selected returns the selected date, if any.
func (n *Navigator) Selected() (Date, bool) {
	return n.selected, n.hasSelected
}

// Today returns the clock's current date.
func (n *Navigator) Today() Date {
	return DateOf(n.clock.Now())
}

// GoToPreviousMonth views the month before the current one and returns it.
// At the first supported month the view does not move.
func (n *Navigator) GoToPreviousMonth() YearMonth {
	if prev := n.viewed.Prev(); prev.Validate() == nil {
		n.viewed = prev
	}
	return n.viewed
}

// GoToNextMonth views the month after the current one and returns it.
// At the last supported month the view does not move.
func (n *Navigator) GoToNextMonth() YearMonth {
	if next := n.viewed.Next(); next.Validate() == nil {
		n.viewed = next
	}
	return n.viewed
}

// GoToToday views the current month and selects today.
func (n *Navigator) GoToToday() {
	today := n.Today()
	n.viewed = today.YearMonth()
	n.selected = today
	n.hasSelected = true
}

// ViewMonth jumps straight to ym. The selection is left untouched.
func (n *Navigator) ViewMonth(ym YearMonth) error {
	if err := ym.Validate(); err != nil {
		return err
	}
	n.viewed = ym
	return nil
}

// SelectDate sets the selected date only. Selecting a previous- or
// next-month cell does not move the viewed month.
func (n *Navigator) SelectDate(d Date) error {
	if err := d.Validate(); err != nil {
		return err
	}
	n.selected = d
	n.hasSelected = true
	return nil
}

// ClearSelection drops the selected date.
func (n *Navigator) ClearSelection() {
	n.selected = Date{}
	n.hasSelected = false
}

// IsToday reports whether d is the clock's current date.
func (n *Navigator) IsToday(d Date) bool {
	return d == n.Today()
}

// IsSelected reports whether d is the selected date.
func (n *Navigator) IsSelected(d Date) bool {
	return n.hasSelected && d == n.selected
}

// Grid builds the grid of the viewed month.
func (n *Navigator) Grid() ([]DayCell, error) {
	return GridOf(n.viewed)
}
