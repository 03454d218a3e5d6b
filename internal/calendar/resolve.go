package calendar

import (
	"fmt"
	"strings"

	"github.com/tartampluch/famcal/internal/config"
)

// Caps bounds how many items of each category a cell shows.
type Caps struct {
	// Entries caps the merged holiday + events list.
	Entries   int `json:"entries"`
	Songs     int `json:"songs"`
	Birthdays int `json:"birthdays"`
}

// DefaultCaps returns the standard 2/3/2 display policy.
func DefaultCaps() Caps {
	return Caps{
		Entries:   config.CapEntries,
		Songs:     config.CapSongs,
		Birthdays: config.CapBirthdays,
	}
}

// normalized replaces non-positive caps with the defaults.
func (c Caps) normalized() Caps {
	def := DefaultCaps()
	if c.Entries <= 0 {
		c.Entries = def.Entries
	}
	if c.Songs <= 0 {
		c.Songs = def.Songs
	}
	if c.Birthdays <= 0 {
		c.Birthdays = def.Birthdays
	}
	return c
}

// EntryKind distinguishes holidays from events in the merged list.
type EntryKind int

const (
	EntryHoliday EntryKind = iota
	EntryEvent
)

// String returns the lower-case kind name.
func (k EntryKind) String() string {
	switch k {
	case EntryHoliday:
		return "holiday"
	case EntryEvent:
		return "event"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// MarshalText encodes the kind as its lower-case name.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Entry is one line of the merged holiday/event list.
type Entry struct {
	Kind  EntryKind `json:"kind"`
	Label string    `json:"label"`
}

// Overflow counts items hidden by a cap. Holidays and events have no
// overflow indicator; items past their cap are dropped.
type Overflow struct {
	Songs     int `json:"songs"`
	Birthdays int `json:"birthdays"`
}

// Annotations is everything shown inside one cell.
type Annotations struct {
	// Holiday is the holiday name, empty when the date has none.
	Holiday   string           `json:"holiday,omitempty"`
	Entries   []Entry          `json:"entries"`
	Songs     []SongRecord     `json:"songs"`
	Birthdays []BirthdayRecord `json:"birthdays"`
	Overflow  Overflow         `json:"overflow"`
}

// Empty reports whether the cell has nothing to show.
func (a Annotations) Empty() bool {
	return a.Holiday == "" && len(a.Entries) == 0 && len(a.Songs) == 0 && len(a.Birthdays) == 0
}

// Resolver applies the display policy to the lookups of one cell.
// The zero value uses DefaultCaps.
type Resolver struct {
	Caps Caps
}

// NewResolver returns a Resolver with caps, falling back to the defaults
// for any non-positive value.
func NewResolver(caps Caps) Resolver {
	return Resolver{Caps: caps.normalized()}
}

// Resolve looks up every source for cell and truncates each category.
//
// Holidays, events and songs match on the cell's exact date. Birthdays
// match on month and day only, so they show up in every year and in
// previous/next-month cells alike.
func (r Resolver) Resolve(cell DayCell, src Sources) Annotations {
	caps := r.Caps.normalized()
	key := cell.Date.Key()

	a := Annotations{
		Entries:   []Entry{},
		Songs:     []SongRecord{},
		Birthdays: []BirthdayRecord{},
	}

	if name, ok := src.HolidaysByDate[key]; ok {
		a.Holiday = labelOr(name, config.FallbackHolidayName)
		a.Entries = append(a.Entries, Entry{Kind: EntryHoliday, Label: a.Holiday})
	}
	for _, ev := range src.EventsByDate[key] {
		if len(a.Entries) >= caps.Entries {
			break
		}
		a.Entries = append(a.Entries, Entry{Kind: EntryEvent, Label: labelOr(ev.Title, config.FallbackEventTitle)})
	}

	songs := src.SongsByDate[key]
	shown := min(len(songs), caps.Songs)
	for _, s := range songs[:shown] {
		s.Title = labelOr(s.Title, config.FallbackSongTitle)
		a.Songs = append(a.Songs, s)
	}
	a.Overflow.Songs = len(songs) - shown

	birthdays := src.BirthdaysByMonthDay[cell.Date.MonthDayKey()]
	shown = min(len(birthdays), caps.Birthdays)
	for _, b := range birthdays[:shown] {
		b.Name = labelOr(b.Name, config.FallbackName)
		a.Birthdays = append(a.Birthdays, b)
	}
	a.Overflow.Birthdays = len(birthdays) - shown

	return a
}

// ResolveGrid resolves every cell, keeping the grid order.
func (r Resolver) ResolveGrid(cells []DayCell, src Sources) []Annotations {
	out := make([]Annotations, len(cells))
	for i, c := range cells {
		out[i] = r.Resolve(c, src)
	}
	return out
}

func labelOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
