package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
)

// Snapshot is one fully materialized set of lookups. It is immutable once
// returned by Load; a refresh produces a new Snapshot.
type Snapshot struct {
	Sources  calendar.Sources
	Stats    Stats
	LoadedAt time.Time
	// Failed lists the IDs of sources that could not be loaded.
	Failed []string
}

// Loader is the core service responsible for fetching and indexing sources.
type Loader struct {
	Clock       calendar.Clock // Interface for time mocking.
	Fetcher     SourceFetcher  // Interface for network abstraction.
	Credentials Credentials    // Optional password lookup for web sources.
}

// Load reads every source in order and indexes them into one Snapshot.
// A failing source is logged and skipped; Load fails only when no source
// could be read.
func (l *Loader) Load(ctx context.Context, sources []config.SourceConfig) (*Snapshot, error) {
	if len(sources) == 0 {
		return nil, errors.New(config.ErrNoSources)
	}

	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.InfoContext(ctx, config.MsgLoadStarted)

	ix := NewIndexer()
	snap := &Snapshot{}
	var errs []error

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := l.loadSource(ctx, ix, src); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn(config.MsgSourceFailed,
				config.LogKeySource, src.ID,
				config.LogKeyKind, src.Kind,
				config.LogKeyMode, src.Mode,
				config.LogKeyError, err)
			snap.Failed = append(snap.Failed, src.ID)
			errs = append(errs, fmt.Errorf("%s: %w", src.ID, err))
			continue
		}
		log.Debug(config.MsgSourceLoaded, config.LogKeySource, src.ID, config.LogKeyKind, src.Kind)
	}

	if len(errs) == len(sources) {
		return nil, fmt.Errorf("%s: %w", config.ErrAllSourcesFailed, errors.Join(errs...))
	}

	snap.Sources = ix.Sources()
	snap.Stats = ix.Stats()
	snap.LoadedAt = l.now()

	log.Info(config.MsgLoadFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyEvents, snap.Stats.Events),
			slog.Int(config.LogKeyHolidays, snap.Stats.Holidays),
			slog.Int(config.LogKeySongs, snap.Stats.Songs),
			slog.Int(config.LogKeyBirthdays, snap.Stats.Birthdays),
			slog.Int(config.LogKeyFailed, len(snap.Failed)),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (l *Loader) now() time.Time {
	if l.Clock == nil {
		return time.Now()
	}
	return l.Clock.Now()
}

// loadSource decodes one source completely before indexing it, so a
// failure never leaves half a source in the snapshot.
func (l *Loader) loadSource(ctx context.Context, ix *Indexer, src config.SourceConfig) error {
	reader, err := l.acquireStream(ctx, src)
	if err != nil {
		return err
	}
	// Best effort close. Errors in Close() for read-only streams are rarely actionable here.
	defer func() { _ = reader.Close() }()

	switch src.Kind {
	case config.SourceKindSnapshot, "":
		doc, err := DecodeDocument(reader)
		if err != nil {
			return err
		}
		ix.AddDocument(src.ID, doc)
	case config.SourceKindVCard:
		birthdays, err := ParseBirthdays(ctx, reader)
		if err != nil {
			return err
		}
		ix.AddBirthdays(birthdays)
	case config.SourceKindICS:
		holidays, err := ParseHolidays(ctx, reader)
		if err != nil {
			return err
		}
		ix.AddHolidays(src.ID, holidays)
	default:
		return fmt.Errorf("%s: %q", config.ErrKindUnsupport, src.Kind)
	}

	// Only a body that decoded becomes the cached fallback.
	if c, ok := reader.(Committer); ok {
		if err := c.Commit(); err != nil {
			slog.Error(config.ErrCacheWrite,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeySource, src.ID,
				config.LogKeyError, err)
		}
	}
	return nil
}

// acquireStream opens the appropriate data source based on configuration.
func (l *Loader) acquireStream(ctx context.Context, src config.SourceConfig) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.Path == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.Path)
	case config.SourceModeWeb:
		if src.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if l.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return l.Fetcher.Fetch(ctx, src.URL, src.User, lookupPassword(l.Credentials, src.User))
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}
