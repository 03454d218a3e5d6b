// Package render prints a month view as a styled text grid for terminals.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

const (
	cellWidth   = 4
	markerEntry = "*"
)

// Options controls month styling.
type Options struct {
	TitleStyle    lipgloss.Style
	HeaderStyle   lipgloss.Style
	DayStyle      lipgloss.Style
	OutsideStyle  lipgloss.Style
	HolidayStyle  lipgloss.Style
	TodayStyle    lipgloss.Style
	SelectedStyle lipgloss.Style
	DetailStyle   lipgloss.Style
	// ShowDetails lists the annotations of every current-month day below the grid.
	ShowDetails bool
}

// DefaultOptions returns the palette used by the CLI.
func DefaultOptions() Options {
	return Options{
		TitleStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		DayStyle:      lipgloss.NewStyle(),
		OutsideStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		HolidayStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		TodayStyle:    lipgloss.NewStyle().Bold(true).Underline(true),
		SelectedStyle: lipgloss.NewStyle().Reverse(true),
		DetailStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		ShowDetails:   true,
	}
}

// Month renders view as a title line, a weekday header and six week rows.
// Days carrying annotations are marked with an asterisk.
func Month(view calendar.MonthView, weekdays [config.DaysPerWeek]string, opts Options) string {
	var lines []string
	lines = append(lines, opts.TitleStyle.Render(view.Month.String()))

	header := make([]string, 0, config.DaysPerWeek)
	for _, w := range weekdays {
		header = append(header, opts.HeaderStyle.Width(cellWidth).Render(w))
	}
	lines = append(lines, strings.Join(header, ""))

	for start := 0; start+config.DaysPerWeek <= len(view.Cells); start += config.DaysPerWeek {
		row := make([]string, 0, config.DaysPerWeek)
		for _, c := range view.Cells[start : start+config.DaysPerWeek] {
			row = append(row, renderCell(c, opts))
		}
		lines = append(lines, strings.Join(row, ""))
	}

	if opts.ShowDetails {
		if details := Details(view); len(details) > 0 {
			lines = append(lines, "")
			for _, d := range details {
				lines = append(lines, opts.DetailStyle.Render(d))
			}
		}
	}

	return strings.Join(lines, "\n")
}

func renderCell(c calendar.ViewCell, opts Options) string {
	text := fmt.Sprintf("%2d", c.Day)
	if !c.Annotations.Empty() {
		text += markerEntry
	}

	style := opts.DayStyle
	if c.Membership != calendar.MembershipCurrent {
		style = opts.OutsideStyle
	} else if c.Annotations.Holiday != "" {
		style = opts.HolidayStyle
	}
	if c.IsToday {
		style = style.Inherit(opts.TodayStyle)
	}
	if c.IsSelected {
		style = style.Inherit(opts.SelectedStyle)
	}
	// Styles are values: Width on the copy only affects this cell.
	return style.Width(cellWidth).Render(text)
}

// Details returns one line per current-month day that has annotations,
// in grid order.
func Details(view calendar.MonthView) []string {
	var out []string
	for _, c := range view.Cells {
		if c.Membership != calendar.MembershipCurrent || c.Annotations.Empty() {
			continue
		}
		out = append(out, detailLine(c))
	}
	return out
}

func detailLine(c calendar.ViewCell) string {
	a := c.Annotations
	var parts []string

	if len(a.Entries) > 0 {
		labels := make([]string, len(a.Entries))
		for i, e := range a.Entries {
			labels[i] = e.Label
		}
		parts = append(parts, strings.Join(labels, ", "))
	}
	if len(a.Songs) > 0 {
		titles := make([]string, len(a.Songs))
		for i, s := range a.Songs {
			titles[i] = s.Title
		}
		parts = append(parts, "♪ "+withOverflow(titles, a.Overflow.Songs))
	}
	if len(a.Birthdays) > 0 {
		names := make([]string, len(a.Birthdays))
		for i, b := range a.Birthdays {
			names[i] = b.Name
		}
		parts = append(parts, "🎂 "+withOverflow(names, a.Overflow.Birthdays))
	}

	return c.Date.String() + "  " + strings.Join(parts, " | ")
}

func withOverflow(items []string, hidden int) string {
	s := strings.Join(items, ", ")
	if hidden > 0 {
		s += fmt.Sprintf(" +%d", hidden)
	}
	return s
}
