// Package calendar builds fixed six-week month grids and resolves the
// annotations (holidays, events, songs, birthdays) shown in each cell.
//
// Everything here is pure: no I/O, no logging, no shared state. Callers
// supply fully materialized lookup maps and receive plain values back.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/tartampluch/famcal/internal/config"
)

// ErrInvalidDate is returned when a caller passes an out-of-range
// year, month or day.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// Date is a local calendar date without time or zone.
// It is a comparable value type.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns a validated Date.
func NewDate(year int, month time.Month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Normalize resolves a possibly spilling (year, month, day) triple into a
// real date using the host calendar: month 13 is January of the next year,
// day 0 is the last day of the previous month, and so on.
func Normalize(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Validate reports whether d names a real day.
func (d Date) Validate() error {
	if d.Month < time.January || d.Month > time.December {
		return fmt.Errorf("%w: %s: %d", ErrInvalidDate, config.ErrInvalidMonth, int(d.Month))
	}
	if d.Day < 1 || d.Day > DaysIn(d.Year, d.Month) {
		return fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, d.Year, int(d.Month), d.Day)
	}
	return nil
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Normalize(d.Year, d.Month, d.Day+n)
}

// Weekday returns the day of the week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Before reports whether d comes strictly before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// YearMonth returns the month d belongs to.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year, Month: d.Month}
}

// Key returns the exact-date lookup key of d.
func (d Date) Key() ExactDateKey {
	return ExactKey(d)
}

// MonthDayKey returns the year-independent lookup key of d.
func (d Date) MonthDayKey() MonthDayKey {
	n := Normalize(d.Year, d.Month, d.Day)
	return MonthDay(n.Month, n.Day)
}

// String returns the YYYY-MM-DD form of d.
func (d Date) String() string {
	return string(d.Key())
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseExactKey(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// YearMonth identifies a viewed month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) YearMonth {
	return DateOf(t).YearMonth()
}

// Validate rejects months and years the grid builder cannot lay out.
func (ym YearMonth) Validate() error {
	if ym.Month < time.January || ym.Month > time.December {
		return fmt.Errorf("%w: %s: %d", ErrInvalidDate, config.ErrInvalidMonth, int(ym.Month))
	}
	if ym.Year < config.MinYear || ym.Year > config.MaxYear {
		return fmt.Errorf("%w: %s: %d", ErrInvalidDate, config.ErrInvalidYear, ym.Year)
	}
	return nil
}

// Next returns the following month, rolling December into January.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Prev returns the preceding month, rolling January into December.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// First returns the first day of the month.
func (ym YearMonth) First() Date {
	return Date{Year: ym.Year, Month: ym.Month, Day: 1}
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return DaysIn(ym.Year, ym.Month)
}

// Contains reports whether d falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year == ym.Year && d.Month == ym.Month
}

// String returns the YYYY-MM form of ym.
func (ym YearMonth) String() string {
	return fmt.Sprintf(config.FormatYearMonth, ym.Year, int(ym.Month))
}

// MarshalText encodes ym as YYYY-MM.
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}
