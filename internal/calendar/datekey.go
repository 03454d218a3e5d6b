package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/famcal/internal/config"
)

// ExactDateKey is the canonical YYYY-MM-DD key used for events, holidays
// and songs.
type ExactDateKey string

// MonthDayKey is the canonical MM-DD key used for annual birthdays.
type MonthDayKey string

// ExactKey returns the zero-padded key of d. Spilling components are
// normalized first, so Date{2024, 13, 1} and Date{2025, 1, 1} share a key.
func ExactKey(d Date) ExactDateKey {
	n := Normalize(d.Year, d.Month, d.Day)
	return ExactDateKey(fmt.Sprintf(config.FormatExactKey, n.Year, int(n.Month), n.Day))
}

// MonthDay returns the zero-padded month-day key. It never normalizes:
// February 29 stays February 29 regardless of any year.
func MonthDay(month time.Month, day int) MonthDayKey {
	return MonthDayKey(fmt.Sprintf(config.FormatMonthDayKey, int(month), day))
}

// ParseExactKey parses a strict YYYY-MM-DD string.
func ParseExactKey(s string) (Date, error) {
	t, err := time.Parse(config.DateFormatFullDash, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// ParseMonthDayKey accepts MM-DD as well as the vCard forms --MM-DD and
// --MMDD. February 29 is valid.
func ParseMonthDayKey(s string) (MonthDayKey, error) {
	v := strings.TrimSpace(s)
	layouts := []string{config.DateFormatMonthDay, config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		// Re-validate against a leap year so --02-29 is accepted everywhere.
		d, err := NewDate(config.DefaultLeapYear, t.Month(), t.Day())
		if err != nil {
			break
		}
		return MonthDay(d.Month, d.Day), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Date returns the month and day encoded in k.
func (k MonthDayKey) Date() (time.Month, int, error) {
	t, err := time.Parse(config.DateFormatMonthDay, string(k))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, string(k))
	}
	return t.Month(), t.Day(), nil
}
