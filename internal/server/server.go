package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tartampluch/famcal/internal/calendar"
	"github.com/tartampluch/famcal/internal/config"
	"github.com/tartampluch/famcal/internal/engine"
	"github.com/tartampluch/famcal/internal/i18n"
)

// monthResponse is the JSON body of the month endpoint.
type monthResponse struct {
	calendar.MonthView
	Language string                     `json:"language"`
	Weekdays [config.DaysPerWeek]string `json:"weekdays"`
}

// CalendarServer serves month views resolved against the current snapshot.
type CalendarServer struct {
	// snapshot uses atomic.Pointer for lock-free reads.
	// It is read on every request but only replaced by the refresh worker.
	snapshot atomic.Pointer[engine.Snapshot]

	Listen   string
	Language string
	Resolver calendar.Resolver
	Catalog  *i18n.Catalog
	Clock    calendar.Clock
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(listen string, resolver calendar.Resolver, catalog *i18n.Catalog) *CalendarServer {
	return &CalendarServer{
		Listen:   listen,
		Language: config.DefaultLanguage,
		Resolver: resolver,
		Catalog:  catalog,
		Clock:    calendar.RealClock{},
	}
}

// Handler returns the routed HTTP handler.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteMonth, s.handleMonthRequest)
	mux.HandleFunc(config.RouteHealth, s.handleHealth)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Listen == "" {
		return errors.New(config.ErrListenRequired)
	}

	srv := &http.Server{
		Addr:         s.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyListen, s.Listen,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the snapshot used to answer requests.
// Concurrent readers see either the old or the new snapshot, never a mix.
func (s *CalendarServer) Update(snap *engine.Snapshot) {
	if snap == nil {
		return
	}
	s.snapshot.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyEvents, snap.Stats.Events,
		config.LogKeyBirthdays, snap.Stats.Birthdays,
	)
}

func (s *CalendarServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r) {
		return
	}
	if s.snapshot.Load() == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}
	_, _ = io.WriteString(w, config.HTTPMsgHealthy)
}

// handleMonthRequest serves one month view with ETag support.
func (s *CalendarServer) handleMonthRequest(w http.ResponseWriter, r *http.Request) {
	// 1. Method Validation
	if !allowMethod(w, r) {
		return
	}

	// 2. Load Data (Atomic / Lock-Free)
	snap := s.snapshot.Load()

	// 3. Readiness Check
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 4. Build the view for this request only.
	nav := calendar.NewNavigator(s.Clock)
	lang, err := s.applyQuery(nav, r)
	if err != nil {
		slog.Debug(config.HTTPMsgBadRequest,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgBadRequest+": "+err.Error(), http.StatusBadRequest)
		return
	}

	view, err := calendar.ComposeView(nav, s.Resolver, snap.Sources)
	if err != nil {
		http.Error(w, config.HTTPMsgBadRequest+": "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := monthResponse{MonthView: view, Language: lang}
	if s.Catalog != nil {
		resp.Weekdays = s.Catalog.Weekdays(lang)
	} else {
		resp.Weekdays = config.FallbackWeekdays
	}

	body, err := json.Marshal(&resp)
	if err != nil {
		slog.Error(config.ErrEncodeResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	hash := sha256.Sum256(body)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// 5. Set Response Headers
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)
	w.Header().Set(config.HeaderLastModified, snap.LoadedAt.UTC().Format(http.TimeFormat))

	// 6. Check Conditional Headers
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// 7. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// applyQuery moves nav to the requested month and selection and returns
// the requested language. Missing parameters keep the navigator defaults.
func (s *CalendarServer) applyQuery(nav *calendar.Navigator, r *http.Request) (string, error) {
	q := r.URL.Query()

	ym := nav.ViewedMonth()
	if v := q.Get(config.QueryYear); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrInvalidYear, err)
		}
		ym.Year = year
	}
	if v := q.Get(config.QueryMonth); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return "", fmt.Errorf("%s: %w", config.ErrInvalidMonth, err)
		}
		ym.Month = time.Month(month)
	}
	if err := nav.ViewMonth(ym); err != nil {
		return "", err
	}

	if v := q.Get(config.QuerySelected); v != "" {
		d, err := calendar.ParseExactKey(v)
		if err != nil {
			return "", err
		}
		if err := nav.SelectDate(d); err != nil {
			return "", err
		}
	}

	lang := q.Get(config.QueryLang)
	if lang == "" {
		lang = s.Language
	}
	return lang, nil
}

func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return false
	}
	return true
}
