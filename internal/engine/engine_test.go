package engine_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.SourceFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

type staticCredentials map[string]string

func (s staticCredentials) Password(user string) (string, error) {
	p, ok := s[user]
	if !ok {
		return "", errors.New("not found")
	}
	return p, nil
}

const snapshotJSON = `{
  "events": [
    {"title": "A", "date": "2024-09-17"},
    {"title": "B", "date": "2024-09-17"},
    {"title": "Broken", "date": "2024-13-01"}
  ],
  "holidays": [
    {"date": "2024-09-17", "name": "추석"}
  ],
  "songs": [
    {"id": "s1", "title": "Song 1", "date": "2024-09-17"}
  ],
  "birthdays": [
    {"memberId": "m1", "name": "Alice", "monthDay": "03-15"},
    {"memberId": "m2", "name": "Bob", "birthDate": "1992-02-29"},
    {"memberId": "m3", "name": "Nobody", "birthDate": "1990-02-29"}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestLoad_LocalSnapshot(t *testing.T) {
	path := writeTemp(t, "snapshot.json", snapshotJSON)
	now := time.Date(2024, 9, 17, 8, 0, 0, 0, time.UTC)

	loader := &engine.Loader{Clock: MockClock{CurrentTime: now}}
	snap, err := loader.Load(context.Background(), []config.SourceConfig{
		{ID: "home", Kind: config.SourceKindSnapshot, Mode: config.SourceModeLocal, Path: path},
	})
	require.NoError(t, err)

	assert.Equal(t, now, snap.LoadedAt)
	assert.Empty(t, snap.Failed)
	assert.Equal(t, engine.Stats{Events: 2, Holidays: 1, Songs: 1, Birthdays: 2}, snap.Stats)

	key := calendar.ExactDateKey("2024-09-17")
	require.Len(t, snap.Sources.EventsByDate[key], 2)
	assert.Equal(t, "A", snap.Sources.EventsByDate[key][0].Title)
	assert.Equal(t, "B", snap.Sources.EventsByDate[key][1].Title)
	assert.Equal(t, "추석", snap.Sources.HolidaysByDate[key])
	assert.Len(t, snap.Sources.BirthdaysByMonthDay["03-15"], 1)

	// A full leap-year birth date keeps Feb 29; 1990-02-29 is not a date and is skipped.
	leap := snap.Sources.BirthdaysByMonthDay["02-29"]
	require.Len(t, leap, 1)
	assert.Equal(t, "Bob", leap[0].Name)
	for _, recs := range snap.Sources.BirthdaysByMonthDay {
		for _, b := range recs {
			assert.NotEqual(t, "m3", b.MemberID)
		}
	}
}

func TestLoad_WebVCard_UsesFetcherAndCredentials(t *testing.T) {
	vcf := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Leap Kid\r\nBDAY:--0229\r\nEND:VCARD\r\n"

	mf := new(MockFetcher)
	mf.On("Fetch", mock.Anything, "https://dav.example.com/book.vcf", "alice", "s3cret").
		Return(io.NopCloser(strings.NewReader(vcf)), nil).Once()

	loader := &engine.Loader{
		Fetcher:     mf,
		Credentials: staticCredentials{"alice": "s3cret"},
	}
	snap, err := loader.Load(context.Background(), []config.SourceConfig{{
		ID:   "contacts",
		Kind: config.SourceKindVCard,
		Mode: config.SourceModeWeb,
		URL:  "https://dav.example.com/book.vcf",
		User: "alice",
	}})
	require.NoError(t, err)
	mf.AssertExpectations(t)

	got := snap.Sources.BirthdaysByMonthDay["02-29"]
	require.Len(t, got, 1)
	assert.Equal(t, "Leap Kid", got[0].Name)
	assert.NotEmpty(t, got[0].MemberID)
}

func TestLoad_ICSHolidays(t *testing.T) {
	ics := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//famcal//test//EN",
		"BEGIN:VEVENT",
		"UID:h1@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20241225",
		"SUMMARY:Christmas",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")
	path := writeTemp(t, "holidays.ics", ics)

	loader := &engine.Loader{}
	snap, err := loader.Load(context.Background(), []config.SourceConfig{
		{ID: "ics", Kind: config.SourceKindICS, Mode: config.SourceModeLocal, Path: path},
	})
	require.NoError(t, err)
	assert.Equal(t, "Christmas", snap.Sources.HolidaysByDate["2024-12-25"])
}

func TestLoad_HolidayFirstSourceWins(t *testing.T) {
	first := writeTemp(t, "a.json", `{"holidays":[{"date":"2024-12-25","name":"Christmas"}]}`)
	second := writeTemp(t, "b.json", `{"holidays":[{"date":"2024-12-25","name":"Noël"},{"date":"2024-12-26","name":"Boxing Day"}]}`)

	loader := &engine.Loader{}
	snap, err := loader.Load(context.Background(), []config.SourceConfig{
		{ID: "a", Kind: config.SourceKindSnapshot, Mode: config.SourceModeLocal, Path: first},
		{ID: "b", Kind: config.SourceKindSnapshot, Mode: config.SourceModeLocal, Path: second},
	})
	require.NoError(t, err)

	assert.Equal(t, "Christmas", snap.Sources.HolidaysByDate["2024-12-25"])
	assert.Equal(t, "Boxing Day", snap.Sources.HolidaysByDate["2024-12-26"])
	assert.Equal(t, 2, snap.Stats.Holidays)
}

func TestLoad_PartialFailure(t *testing.T) {
	good := writeTemp(t, "good.json", `{"events":[{"title":"Dentist","date":"2025-01-10"}]}`)

	mf := new(MockFetcher)
	mf.On("Fetch", mock.Anything, "https://down.example.com/x.json", "", "").
		Return(nil, errors.New("connection refused"))

	loader := &engine.Loader{Fetcher: mf}
	snap, err := loader.Load(context.Background(), []config.SourceConfig{
		{ID: "down", Kind: config.SourceKindSnapshot, Mode: config.SourceModeWeb, URL: "https://down.example.com/x.json"},
		{ID: "good", Kind: config.SourceKindSnapshot, Mode: config.SourceModeLocal, Path: good},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"down"}, snap.Failed)
	assert.Len(t, snap.Sources.EventsByDate["2025-01-10"], 1)
}

func TestLoad_Errors(t *testing.T) {
	badJSON := writeTemp(t, "bad.json", `{"events": [`)

	tests := []struct {
		name    string
		sources []config.SourceConfig
		wantErr string
	}{
		{
			name:    "No sources",
			sources: nil,
			wantErr: config.ErrNoSources,
		},
		{
			name:    "Empty local path",
			sources: []config.SourceConfig{{ID: "x", Mode: config.SourceModeLocal}},
			wantErr: config.ErrLocalPathEmpty,
		},
		{
			name:    "Empty web URL",
			sources: []config.SourceConfig{{ID: "x", Mode: config.SourceModeWeb}},
			wantErr: config.ErrWebURLEmpty,
		},
		{
			name:    "Missing fetcher",
			sources: []config.SourceConfig{{ID: "x", Mode: config.SourceModeWeb, URL: "https://example.com"}},
			wantErr: config.ErrFetcherMissing,
		},
		{
			name:    "Unsupported mode",
			sources: []config.SourceConfig{{ID: "x", Mode: "ftp"}},
			wantErr: config.ErrModeUnsupport,
		},
		{
			name:    "Unsupported kind",
			sources: []config.SourceConfig{{ID: "x", Kind: "csv", Mode: config.SourceModeLocal, Path: badJSON}},
			wantErr: config.ErrKindUnsupport,
		},
		{
			name:    "Malformed snapshot",
			sources: []config.SourceConfig{{ID: "x", Kind: config.SourceKindSnapshot, Mode: config.SourceModeLocal, Path: badJSON}},
			wantErr: config.ErrSnapshotDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &engine.Loader{}
			snap, err := loader.Load(context.Background(), tt.sources)
			require.Error(t, err)
			assert.Nil(t, snap)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ContextCancelled(t *testing.T) {
	path := writeTemp(t, "snapshot.json", snapshotJSON)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &engine.Loader{}
	_, err := loader.Load(ctx, []config.SourceConfig{
		{ID: "home", Mode: config.SourceModeLocal, Path: path},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_UndecodableBodyKeepsLastGoodCache(t *testing.T) {
	const good = `{"events":[{"title":"Dentist","date":"2025-01-10"}]}`
	const broken = `{"events":[{"title":"Dent`

	var serveBroken atomic.Bool
	var lastIfNoneMatch atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastIfNoneMatch.Store(r.Header.Get(config.HeaderIfNoneMatch))
		if serveBroken.Load() {
			if r.Header.Get(config.HeaderIfNoneMatch) == `"v2"` {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.Header().Set(config.HeaderETag, `"v2"`)
			_, _ = w.Write([]byte(broken))
			return
		}
		w.Header().Set(config.HeaderETag, `"v1"`)
		_, _ = w.Write([]byte(good))
	}))
	defer ts.Close()

	loader := &engine.Loader{Fetcher: engine.NewHTTPFetcher(engine.NewCache(t.TempDir()))}
	sources := []config.SourceConfig{
		{ID: "remote", Kind: config.SourceKindSnapshot, Mode: config.SourceModeWeb, URL: ts.URL},
	}
	ctx := context.Background()

	snap, err := loader.Load(ctx, sources)
	require.NoError(t, err)
	assert.Len(t, snap.Sources.EventsByDate["2025-01-10"], 1)

	// The store now serves a body that does not decode.
	serveBroken.Store(true)
	for i := 0; i < 2; i++ {
		_, err = loader.Load(ctx, sources)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrSnapshotDecode)
		// Revalidation still uses the last good payload's validator.
		assert.Equal(t, `"v1"`, lastIfNoneMatch.Load())
	}

	// Once the store is down, the last good payload is served.
	ts.Close()
	snap, err = loader.Load(ctx, sources)
	require.NoError(t, err)
	assert.Len(t, snap.Sources.EventsByDate["2025-01-10"], 1)
}
