package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

// ParseHolidays reads an iCalendar feed and returns one holiday per
// VEVENT, keyed on the local date of its DTSTART. RRULEs are not expanded.
func ParseHolidays(ctx context.Context, r io.Reader) ([]calendar.HolidayRecord, error) {
	decoder := ical.NewDecoder(r)
	var out []calendar.HolidayRecord

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		cal, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalParse, err)
		}

		for _, ev := range cal.Events() {
			start, err := ev.DateTimeStart(time.Local)
			if err != nil {
				slog.Warn(config.MsgSkippedRecord,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyKind, config.LogKeyHolidays,
					config.LogKeyError, err)
				continue
			}

			// A missing SUMMARY is kept; the resolver shows a fallback label.
			name, _ := ev.Props.Text(ical.PropSummary)
			out = append(out, calendar.HolidayRecord{
				Date: calendar.DateOf(start),
				Name: name,
			})
		}
	}

	return out, nil
}
