package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

// maxDecodeErrors stops decoding a stream that keeps failing.
const maxDecodeErrors = 16

var memberNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte(config.MemberIDNamespace))

// ParseBirthdays reads a vCard address book and returns one birthday per
// card carrying a BDAY. Cards without a usable birthday are skipped.
func ParseBirthdays(ctx context.Context, r io.Reader) ([]calendar.BirthdayRecord, error) {
	decoder := vcard.NewDecoder(r)
	var out []calendar.BirthdayRecord
	failures := 0

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			failures++
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			if failures >= maxDecodeErrors {
				return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		failures = 0

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}

		name := cardName(card)
		out = append(out, calendar.BirthdayRecord{
			MemberID: memberID(card, name, birthDate, yearKnown),
			Name:     name,
			MonthDay: calendar.MonthDay(birthDate.Month(), birthDate.Day()),
		})
	}

	return out, nil
}

// cardName applies the FN > N > fallback strategy.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.Value(config.VCardFN)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		if full := strings.TrimSpace(n.GivenName + " " + n.FamilyName); full != "" {
			return full
		}
	}
	return config.FallbackName
}

// memberID uses the card UID when present and otherwise derives a stable
// UUIDv5 so IDs survive refreshes.
func memberID(card vcard.Card, name string, birthDate time.Time, yearKnown bool) string {
	if uid := strings.TrimSpace(card.Value(config.VCardUID)); uid != "" {
		return uid
	}
	date := birthDate.Format(config.DateFormatMonthDay)
	if yearKnown {
		date = birthDate.Format(config.DateFormatFullDash)
	}
	input := fmt.Sprintf(config.FormatHashInput, name, date, config.MemberIDNamespace)
	return uuid.NewSHA1(memberNamespace, []byte(input)).String()
}

// parseDate handles various vCard date formats.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown) - vCard specific.
	// Anchor on a leap year so --02-29 survives.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
