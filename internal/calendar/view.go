package calendar

// ViewCell is a grid cell with its resolved annotations and the flags a
// presentation layer needs to highlight it.
type ViewCell struct {
	DayCell
	IsToday     bool        `json:"isToday"`
	IsSelected  bool        `json:"isSelected"`
	Annotations Annotations `json:"annotations"`
}

// MonthView is the complete, render-ready state of one month.
type MonthView struct {
	Month    YearMonth  `json:"month"`
	Today    Date       `json:"today"`
	Selected *Date      `json:"selected,omitempty"`
	Cells    []ViewCell `json:"cells"`
}

// ComposeView builds the grid of nav's viewed month and resolves every
// cell against src.
func ComposeView(nav *Navigator, r Resolver, src Sources) (MonthView, error) {
	cells, err := nav.Grid()
	if err != nil {
		return MonthView{}, err
	}

	today := nav.Today()
	view := MonthView{
		Month: nav.ViewedMonth(),
		Today: today,
		Cells: make([]ViewCell, len(cells)),
	}
	if sel, ok := nav.Selected(); ok {
		view.Selected = &sel
	}

	annotations := r.ResolveGrid(cells, src)
	for i, c := range cells {
		view.Cells[i] = ViewCell{
			DayCell:     c,
			IsToday:     c.Date == today,
			IsSelected:  nav.IsSelected(c.Date),
			Annotations: annotations[i],
		}
	}
	return view, nil
}
