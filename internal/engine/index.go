package engine

import (
	"log/slog"

	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

// Stats counts indexed records per category.
type Stats struct {
	Events    int
	Holidays  int
	Songs     int
	Birthdays int
}

// Indexer turns record lists into the lookups consumed by the resolver.
//
// Records keep the order in which they were added. For holidays the first
// name declared for a date wins: sources are added in configuration order,
// so an earlier source takes precedence over a later one.
type Indexer struct {
	sources calendar.Sources
	owner   map[calendar.ExactDateKey]string
	stats   Stats
}

// NewIndexer returns an empty Indexer.
func NewIndexer() *Indexer {
	return &Indexer{
		sources: calendar.Sources{
			EventsByDate:        make(map[calendar.ExactDateKey][]calendar.EventRecord),
			HolidaysByDate:      make(map[calendar.ExactDateKey]string),
			SongsByDate:         make(map[calendar.ExactDateKey][]calendar.SongRecord),
			BirthdaysByMonthDay: make(map[calendar.MonthDayKey][]calendar.BirthdayRecord),
		},
		owner: make(map[calendar.ExactDateKey]string),
	}
}

// AddEvents indexes recs by exact date, after any events already added.
func (ix *Indexer) AddEvents(recs []calendar.EventRecord) {
	for _, r := range recs {
		k := r.Date.Key()
		ix.sources.EventsByDate[k] = append(ix.sources.EventsByDate[k], r)
		ix.stats.Events++
	}
}

// AddHolidays indexes recs declared by sourceID. A date that already has
// a holiday keeps it.
func (ix *Indexer) AddHolidays(sourceID string, recs []calendar.HolidayRecord) {
	for _, r := range recs {
		k := r.Date.Key()
		if kept, ok := ix.sources.HolidaysByDate[k]; ok {
			if kept != r.Name {
				slog.Info(config.MsgHolidayConflict,
					config.LogKeyComponent, config.CompIndexer,
					config.LogKeyDate, string(k),
					config.LogKeyKept, kept,
					config.LogKeySource, ix.owner[k],
					config.LogKeyDropped, r.Name,
				)
			}
			continue
		}
		ix.sources.HolidaysByDate[k] = r.Name
		ix.owner[k] = sourceID
		ix.stats.Holidays++
	}
}

// AddSongs indexes recs by exact date, after any songs already added.
func (ix *Indexer) AddSongs(recs []calendar.SongRecord) {
	for _, r := range recs {
		k := r.Date.Key()
		ix.sources.SongsByDate[k] = append(ix.sources.SongsByDate[k], r)
		ix.stats.Songs++
	}
}

// AddBirthdays indexes recs by month and day, ignoring the birth year.
func (ix *Indexer) AddBirthdays(recs []calendar.BirthdayRecord) {
	for _, r := range recs {
		ix.sources.BirthdaysByMonthDay[r.MonthDay] = append(ix.sources.BirthdaysByMonthDay[r.MonthDay], r)
		ix.stats.Birthdays++
	}
}

// AddDocument indexes every category of a snapshot document.
func (ix *Indexer) AddDocument(sourceID string, doc Document) {
	ix.AddEvents(doc.Events)
	ix.AddHolidays(sourceID, doc.Holidays)
	ix.AddSongs(doc.Songs)
	ix.AddBirthdays(doc.Birthdays)
}

// Sources returns the built lookups. The Indexer must not be used afterwards.
func (ix *Indexer) Sources() calendar.Sources {
	return ix.sources
}

// Stats returns the number of records indexed so far per category.
func (ix *Indexer) Stats() Stats {
	return ix.stats
}
