package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

// Document is the decoded remote data store snapshot.
type Document struct {
	Events    []calendar.EventRecord
	Holidays  []calendar.HolidayRecord
	Songs     []calendar.SongRecord
	Birthdays []calendar.BirthdayRecord
}

// Wire format. Dates stay strings here so one bad record does not fail
// the whole document.
type rawDocument struct {
	Events []struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"events"`
	Holidays []struct {
		Date string `json:"date"`
		Name string `json:"name"`
	} `json:"holidays"`
	Songs []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Date  string `json:"date"`
	} `json:"songs"`
	Birthdays []struct {
		MemberID  string `json:"memberId"`
		Name      string `json:"name"`
		MonthDay  string `json:"monthDay"`
		BirthDate string `json:"birthDate"`
	} `json:"birthdays"`
}

// DecodeDocument reads a snapshot document. Records with unparseable
// dates are skipped and logged; only a structurally invalid document is
// an error.
func DecodeDocument(r io.Reader) (Document, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("%s: %w", config.ErrSnapshotDecode, err)
	}

	var doc Document

	for _, e := range raw.Events {
		d, err := calendar.ParseExactKey(e.Date)
		if err != nil {
			skipRecord(config.LogKeyEvents, e.Date, err)
			continue
		}
		doc.Events = append(doc.Events, calendar.EventRecord{Title: e.Title, Date: d})
	}

	for _, h := range raw.Holidays {
		d, err := calendar.ParseExactKey(h.Date)
		if err != nil {
			skipRecord(config.LogKeyHolidays, h.Date, err)
			continue
		}
		doc.Holidays = append(doc.Holidays, calendar.HolidayRecord{Date: d, Name: h.Name})
	}

	for _, s := range raw.Songs {
		d, err := calendar.ParseExactKey(s.Date)
		if err != nil {
			skipRecord(config.LogKeySongs, s.Date, err)
			continue
		}
		doc.Songs = append(doc.Songs, calendar.SongRecord{ID: s.ID, Title: s.Title, Date: d})
	}

	for _, b := range raw.Birthdays {
		key, err := birthdayKey(b.MonthDay, b.BirthDate)
		if err != nil {
			skipRecord(config.LogKeyBirthdays, b.MonthDay+b.BirthDate, err)
			continue
		}
		doc.Birthdays = append(doc.Birthdays, calendar.BirthdayRecord{MemberID: b.MemberID, Name: b.Name, MonthDay: key})
	}

	return doc, nil
}

// birthdayKey prefers an explicit month-day and otherwise strips the year
// from a full birth date.
func birthdayKey(monthDay, birthDate string) (calendar.MonthDayKey, error) {
	if strings.TrimSpace(monthDay) != "" {
		return calendar.ParseMonthDayKey(monthDay)
	}
	d, err := calendar.ParseExactKey(birthDate)
	if err != nil {
		return "", err
	}
	return d.MonthDayKey(), nil
}

func skipRecord(kind, value string, err error) {
	slog.Warn(config.MsgSkippedRecord,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyKind, kind,
		config.LogKeyValue, value,
		config.LogKeyError, err,
	)
}
