package engine_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
	"github.com/zalando/go-keyring"
)

func vcardOf(lines ...string) string {
	return strings.Join(append([]string{"BEGIN:VCARD", "VERSION:4.0"}, append(lines, "END:VCARD", "")...), "\r\n")
}

func TestParseBirthdays_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		bday string
		want calendar.MonthDayKey
	}{
		{"Extended", "1990-05-17", "05-17"},
		{"Basic", "19900517", "05-17"},
		{"Timestamp", "1990-05-17T10:00:00Z", "05-17"},
		{"No year extended", "--05-17", "05-17"},
		{"No year basic", "--0517", "05-17"},
		{"Leap day without year", "--02-29", "02-29"},
		{"Leap day with year", "2000-02-29", "02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.ParseBirthdays(context.Background(), strings.NewReader(vcardOf("FN:Someone", "BDAY:"+tt.bday)))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].MonthDay)
		})
	}
}

func TestParseBirthdays_SkipsCardsWithoutBirthday(t *testing.T) {
	book := vcardOf("FN:No Birthday") +
		vcardOf("FN:Bad Date", "BDAY:not-a-date") +
		vcardOf("FN:Good", "BDAY:1985-11-02")

	got, err := engine.ParseBirthdays(context.Background(), strings.NewReader(book))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Good", got[0].Name)
}

func TestParseBirthdays_NameAndMemberID(t *testing.T) {
	book := vcardOf("FN:With UID", "UID:urn:uuid:1234", "BDAY:1990-01-01") +
		vcardOf("N:Doe;Jane;;;", "BDAY:1991-02-02") +
		vcardOf("BDAY:1992-03-03")

	got, err := engine.ParseBirthdays(context.Background(), strings.NewReader(book))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "With UID", got[0].Name)
	assert.Equal(t, "urn:uuid:1234", got[0].MemberID)

	assert.Equal(t, "Jane Doe", got[1].Name)
	assert.Equal(t, config.FallbackName, got[2].Name)

	// Derived IDs are stable across parses.
	again, err := engine.ParseBirthdays(context.Background(), strings.NewReader(book))
	require.NoError(t, err)
	assert.Equal(t, got[1].MemberID, again[1].MemberID)
	assert.NotEqual(t, got[1].MemberID, got[2].MemberID)
}

func TestParseBirthdays_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := engine.ParseBirthdays(ctx, strings.NewReader(vcardOf("FN:X", "BDAY:2000-01-01")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseHolidays_MissingSummaryKept(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//famcal//test//EN",
		"BEGIN:VEVENT",
		"UID:a@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20240101",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	got, err := engine.ParseHolidays(context.Background(), strings.NewReader(ics))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 1}, got[0].Date)
	assert.Empty(t, got[0].Name)
}

func TestParseHolidays_Malformed(t *testing.T) {
	_, err := engine.ParseHolidays(context.Background(), strings.NewReader("BEGIN:VCALENDAR\r\nGARBAGE"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrICalParse)
}

func TestDecodeDocument_SkipsBadRecords(t *testing.T) {
	doc, err := engine.DecodeDocument(strings.NewReader(`{
	  "events": [{"title": "ok", "date": "2025-01-01"}, {"title": "bad", "date": "01/02/2025"}],
	  "holidays": [{"date": "2025-02-30", "name": "nope"}],
	  "songs": [{"id": "1", "title": "t", "date": "2025-01-01"}],
	  "birthdays": [{"memberId": "m", "name": "n", "monthDay": "13-01"}, {"memberId": "k", "name": "k", "monthDay": "--12-24"}]
	}`))
	require.NoError(t, err)

	require.Len(t, doc.Events, 1)
	assert.Equal(t, "ok", doc.Events[0].Title)
	assert.Empty(t, doc.Holidays)
	assert.Len(t, doc.Songs, 1)
	require.Len(t, doc.Birthdays, 1)
	assert.Equal(t, calendar.MonthDayKey("12-24"), doc.Birthdays[0].MonthDay)
}

func TestDecodeDocument_EmptyObject(t *testing.T) {
	doc, err := engine.DecodeDocument(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Empty(t, doc.Events)
	assert.Empty(t, doc.Birthdays)
}

func TestIndexer_PreservesOrderAndCounts(t *testing.T) {
	d := calendar.Date{Year: 2025, Month: time.March, Day: 3}
	ix := engine.NewIndexer()
	ix.AddSongs([]calendar.SongRecord{{ID: "1", Title: "first", Date: d}})
	ix.AddSongs([]calendar.SongRecord{{ID: "2", Title: "second", Date: d}})
	ix.AddHolidays("x", []calendar.HolidayRecord{{Date: d, Name: "H"}, {Date: d, Name: "H"}})

	src := ix.Sources()
	require.Len(t, src.SongsByDate[d.Key()], 2)
	assert.Equal(t, "first", src.SongsByDate[d.Key()][0].Title)
	assert.Equal(t, engine.Stats{Songs: 2, Holidays: 1}, ix.Stats())
}

func TestKeyringCredentials(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, engine.StorePassword("alice", "pw"))

	creds := engine.KeyringCredentials{}
	got, err := creds.Password("alice")
	require.NoError(t, err)
	assert.Equal(t, "pw", got)

	_, err = creds.Password("bob")
	assert.Error(t, err)
}
