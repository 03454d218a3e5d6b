package calendar

import (
	"fmt"
	"time"

	"github.com/tartampluch/famcal/internal/config"
)

// Membership tells which month a grid cell belongs to relative to the
// viewed month.
type Membership int

const (
	MembershipPrevious Membership = iota
	MembershipCurrent
	MembershipNext
)

var membershipNames = [...]string{"previous", "current", "next"}

// String returns the lower-case membership name.
func (m Membership) String() string {
	if m < MembershipPrevious || m > MembershipNext {
		return fmt.Sprintf("Membership(%d)", int(m))
	}
	return membershipNames[m]
}

// MarshalText encodes the membership as its lower-case name.
func (m Membership) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// DayCell is one of the 42 cells of a month grid.
type DayCell struct {
	Day        int        `json:"day"`
	Membership Membership `json:"membership"`
	Date       Date       `json:"date"`
}

// BuildGrid lays out the viewed month as a fixed 6x7 grid starting on
// Sunday. The grid holds, in order, the trailing days of the previous
// month needed to reach the weekday of the 1st, every day of the month,
// and leading days of the next month until 42 cells are filled.
//
// An out-of-range year or month yields ErrInvalidDate.
func BuildGrid(year int, month time.Month) ([]DayCell, error) {
	ym := YearMonth{Year: year, Month: month}
	if err := ym.Validate(); err != nil {
		return nil, err
	}

	cells := make([]DayCell, 0, config.GridCells)

	lead := int(ym.First().Weekday())
	prev := ym.Prev()
	prevDays := prev.Days()
	for i := lead - 1; i >= 0; i-- {
		day := prevDays - i
		cells = append(cells, DayCell{
			Day:        day,
			Membership: MembershipPrevious,
			Date:       Date{Year: prev.Year, Month: prev.Month, Day: day},
		})
	}

	for day := 1; day <= ym.Days(); day++ {
		cells = append(cells, DayCell{
			Day:        day,
			Membership: MembershipCurrent,
			Date:       Date{Year: ym.Year, Month: ym.Month, Day: day},
		})
	}

	next := ym.Next()
	for day := 1; len(cells) < config.GridCells; day++ {
		cells = append(cells, DayCell{
			Day:        day,
			Membership: MembershipNext,
			Date:       Date{Year: next.Year, Month: next.Month, Day: day},
		})
	}

	return cells, nil
}

// GridOf is BuildGrid for a YearMonth.
func GridOf(ym YearMonth) ([]DayCell, error) {
	return BuildGrid(ym.Year, ym.Month)
}

// Weeks splits a grid into rows of seven cells.
func Weeks(cells []DayCell) [][]DayCell {
	rows := make([][]DayCell, 0, (len(cells)+config.DaysPerWeek-1)/config.DaysPerWeek)
	for start := 0; start < len(cells); start += config.DaysPerWeek {
		end := min(start+config.DaysPerWeek, len(cells))
		rows = append(rows, cells[start:end])
	}
	return rows
}
